// Package steamcmd wraps the SteamCMD command-line installer. It is
// the launcher's only download mechanism: app installs and workshop
// downloads both go through here, with output streamed live to the
// operator log, failures classified into a small taxonomy, and
// transient failures retried with exponential backoff.
package steamcmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tacticalops/armalaunch/pkg/config"
	"github.com/tacticalops/armalaunch/pkg/logging"
)

// Client is the external-tool contract the content manager depends on.
type Client interface {
	// EnsureApp installs or updates a Steam app into installDir.
	EnsureApp(ctx context.Context, opts AppOptions) error
	// WorkshopDownload fetches a workshop item into the SteamCMD
	// library cache.
	WorkshopDownload(ctx context.Context, gameID, itemID int64, validate bool) error
}

// AppOptions parameterizes an app_update invocation.
type AppOptions struct {
	AppID        int64
	InstallDir   string
	Validate     bool
	BetaBranch   string
	BetaPassword string
}

const (
	// tailLines is how much trailing output is kept for error
	// classification and diagnostics.
	tailLines = 50
	// readerJoinTimeout bounds how long we wait for the output reader
	// goroutine after the process exits.
	readerJoinTimeout = 2 * time.Second
)

// SteamCmd runs the real steamcmd.sh binary.
type SteamCmd struct {
	bin         string
	creds       CredentialProvider
	lockPath    string
	backoff     Backoff
	waitTimeout time.Duration
	log         zerolog.Logger
}

// New builds a SteamCmd client from settings. The advisory lock file
// lives in the settings tmp dir and serializes invocations across
// processes sharing the content store.
func New(s *config.Settings, creds CredentialProvider) *SteamCmd {
	return &SteamCmd{
		bin:         s.SteamCmdSh,
		creds:       creds,
		lockPath:    filepath.Join(s.TmpDir, "armalaunch-steamcmd.lock"),
		backoff:     DefaultBackoff(),
		waitTimeout: 30 * time.Minute,
		log:         logging.GetLogger("steamcmd"),
	}
}

// WithWaitTimeout overrides the per-attempt wait timeout.
func (s *SteamCmd) WithWaitTimeout(d time.Duration) *SteamCmd {
	s.waitTimeout = d
	return s
}

// EnsureApp implements Client.
func (s *SteamCmd) EnsureApp(ctx context.Context, opts AppOptions) error {
	user, password, err := s.creds.Load()
	if err != nil {
		return err
	}
	args := []string{
		"+force_install_dir", opts.InstallDir,
		"+login", user, password,
		"+app_update", strconv.FormatInt(opts.AppID, 10),
	}
	if opts.BetaBranch != "" {
		args = append(args, "-beta", opts.BetaBranch)
		if opts.BetaPassword != "" {
			args = append(args, "-betapassword", opts.BetaPassword)
		}
	}
	if opts.Validate {
		args = append(args, "validate")
	}
	args = append(args, "+quit")
	return s.runRetry(ctx, args, user, password)
}

// WorkshopDownload implements Client.
func (s *SteamCmd) WorkshopDownload(ctx context.Context, gameID, itemID int64, validate bool) error {
	user, password, err := s.creds.Load()
	if err != nil {
		return err
	}
	args := []string{
		"+login", user, password,
		"+workshop_download_item",
		strconv.FormatInt(gameID, 10),
		strconv.FormatInt(itemID, 10),
	}
	if validate {
		args = append(args, "validate")
	}
	args = append(args, "+quit")
	return s.runRetry(ctx, args, user, password)
}

// runRetry runs one SteamCMD invocation, retrying transient failures
// (rate limit, timeout) with exponential backoff. Permanent failures
// return immediately.
func (s *SteamCmd) runRetry(ctx context.Context, args []string, user, password string) error {
	for attempt := 1; ; attempt++ {
		err := s.runOnce(ctx, args, user, password)
		if err == nil {
			return nil
		}
		te, ok := AsToolError(err)
		if !ok || !te.Transient() || attempt >= s.backoff.MaxAttempts {
			return err
		}
		delay := s.backoff.Delay(attempt)
		s.log.Warn().
			Str("kind", string(te.Kind)).
			Int("attempt", attempt).
			Int("maxAttempts", s.backoff.MaxAttempts).
			Dur("delay", delay).
			Msg("SteamCMD transient failure, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// runOnce spawns SteamCMD once, holding the advisory lock for the
// whole invocation. Combined output is streamed line-by-line to the
// operator log by a background reader while this goroutine blocks on
// process exit.
func (s *SteamCmd) runOnce(ctx context.Context, args []string, user, password string) error {
	lock := &fileLock{path: s.lockPath}
	if err := lock.acquire(ctx); err != nil {
		return err
	}
	defer lock.release()

	attemptCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	s.log.Info().Strs("cmd", append([]string{s.bin}, maskArgs(args, user, password)...)).Msg("Running SteamCMD")

	cmd := exec.CommandContext(attemptCtx, s.bin, args...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	tailCh := make(chan []string, 1)
	go s.streamOutput(pr, tailCh)

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return &ToolError{Kind: ErrFailed, ExitCode: -1, Tail: []string{err.Error()}}
	}

	waitErr := cmd.Wait()
	_ = pw.Close()

	var tail []string
	select {
	case tail = <-tailCh:
	case <-time.After(readerJoinTimeout):
		s.log.Warn().Msg("SteamCMD output reader did not finish in time")
	}

	if attemptCtx.Err() == context.DeadlineExceeded {
		// CommandContext already killed the child.
		return &ToolError{Kind: ErrTimedOut, Tail: tail}
	}

	exitCode := 0
	if waitErr != nil {
		exitCode = -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
	}

	if te := classifyOutput(tail, exitCode); te != nil {
		s.log.Debug().Str("kind", string(te.Kind)).Int("rc", exitCode).Str("tail", te.TailString()).Msg("SteamCMD failed")
		return te
	}
	return nil
}

// streamOutput reads combined process output, logging every line live
// and keeping the trailing window for classification. SteamCMD redraws
// progress with bare carriage returns, so both \r and \n terminate a
// line.
func (s *SteamCmd) streamOutput(r io.Reader, tailCh chan<- []string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanProgressLines)

	var tail []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		s.log.Debug().Str("tool", "steamcmd").Msg(line)
		tail = append(tail, line)
		if len(tail) > tailLines {
			tail = tail[1:]
		}
	}
	tailCh <- tail
}

// scanProgressLines is a bufio.SplitFunc that terminates tokens at
// either \n or \r.
func scanProgressLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
