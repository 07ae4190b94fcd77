package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), LogFileName)
			t.Setenv("ARMALAUNCH_LOG_FILE", logPath)

			SetupLogger(tt.verbosity)

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("SetupLogger(%d) set level to %v, want %v",
					tt.verbosity, zerolog.GlobalLevel(), tt.wantLevel)
			}

			if _, err := os.Stat(logPath); os.IsNotExist(err) {
				t.Errorf("Log file was not created at %s", logPath)
			}
		})
	}
}

func TestLogFilePathOverride(t *testing.T) {
	t.Setenv("ARMALAUNCH_LOG_FILE", "/custom/place/armalaunch.log")
	if got := LogFilePath(); got != "/custom/place/armalaunch.log" {
		t.Errorf("LogFilePath() = %q, want override", got)
	}
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger("content")
	// component field is attached; just make sure the logger is usable
	logger.Debug().Msg("test message")
}
