package steamcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyOutput(t *testing.T) {
	tests := []struct {
		name     string
		tail     []string
		exitCode int
		wantKind ErrorKind
		wantNil  bool
	}{
		{
			name:     "clean_success",
			tail:     []string{"Success. Downloaded item 450814997"},
			exitCode: 0,
			wantNil:  true,
		},
		{
			name:     "rate_limit_overrides_zero_exit",
			tail:     []string{"Download item 123 failed (Rate Limit Exceeded)."},
			exitCode: 0,
			wantKind: ErrRateLimited,
		},
		{
			name:     "http_429",
			tail:     []string{"ERROR! HTTP 429 from content server"},
			exitCode: 0,
			wantKind: ErrRateLimited,
		},
		{
			name:     "access_denied",
			tail:     []string{"Download item failed (Access Denied)."},
			exitCode: 8,
			wantKind: ErrAccessDenied,
		},
		{
			name:     "file_not_found",
			tail:     []string{"Download item failed (File Not Found)."},
			exitCode: 0,
			wantKind: ErrNotFound,
		},
		{
			name:     "no_subscription",
			tail:     []string{"ERROR! No subscription for item."},
			exitCode: 0,
			wantKind: ErrNotFound,
		},
		{
			name:     "timeout",
			tail:     []string{"Download item failed (Timeout)."},
			exitCode: 0,
			wantKind: ErrTimedOut,
		},
		{
			name:     "failed_to_connect",
			tail:     []string{"Failed to connect to content server"},
			exitCode: 1,
			wantKind: ErrTimedOut,
		},
		{
			name:     "rate_limit_wins_over_later_categories",
			tail:     []string{"access denied", "too many requests"},
			exitCode: 0,
			wantKind: ErrRateLimited,
		},
		{
			name:     "unrecognized_nonzero_exit",
			tail:     []string{"something exploded"},
			exitCode: 42,
			wantKind: ErrFailed,
		},
		{
			name:     "empty_tail_nonzero_exit",
			tail:     nil,
			exitCode: 1,
			wantKind: ErrFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyOutput(tt.tail, tt.exitCode)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.exitCode, got.ExitCode)
		})
	}
}

func TestToolErrorTransient(t *testing.T) {
	assert.True(t, (&ToolError{Kind: ErrRateLimited}).Transient())
	assert.True(t, (&ToolError{Kind: ErrTimedOut}).Transient())
	assert.False(t, (&ToolError{Kind: ErrNotFound}).Transient())
	assert.False(t, (&ToolError{Kind: ErrAccessDenied}).Transient())
	assert.False(t, (&ToolError{Kind: ErrFailed}).Transient())
}

func TestAsToolError(t *testing.T) {
	te := &ToolError{Kind: ErrNotFound}
	got, ok := AsToolError(te)
	require.True(t, ok)
	assert.Equal(t, te, got)

	_, ok = AsToolError(assert.AnError)
	assert.False(t, ok)
}
