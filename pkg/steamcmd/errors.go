package steamcmd

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed SteamCMD invocation.
type ErrorKind string

const (
	// ErrNotFound: the id does not exist, or the account holds no
	// subscription for it.
	ErrNotFound ErrorKind = "NOT_FOUND"
	// ErrAccessDenied: private item, or content requiring a purchase.
	ErrAccessDenied ErrorKind = "ACCESS_DENIED"
	// ErrRateLimited: Steam turned the request away; retry later.
	ErrRateLimited ErrorKind = "RATE_LIMIT"
	// ErrTimedOut: the invocation exceeded its wait timeout or the
	// connection to Steam timed out.
	ErrTimedOut ErrorKind = "TIMEOUT"
	// ErrFailed: generic non-zero exit with no recognized pattern.
	ErrFailed ErrorKind = "FAILED"
)

// ToolError reports a classified SteamCMD failure. Tail carries the
// last captured output lines for diagnostics.
type ToolError struct {
	Kind     ErrorKind
	ExitCode int
	Tail     []string
}

func (e *ToolError) Error() string {
	if e.Kind == ErrFailed {
		return fmt.Sprintf("steamcmd failed (kind=%s rc=%d)", e.Kind, e.ExitCode)
	}
	return fmt.Sprintf("steamcmd failed (kind=%s)", e.Kind)
}

// Transient reports whether retrying the same invocation can succeed.
func (e *ToolError) Transient() bool {
	return e.Kind == ErrRateLimited || e.Kind == ErrTimedOut
}

// TailString renders the captured output tail for log messages.
func (e *ToolError) TailString() string {
	return strings.Join(e.Tail, "\n")
}

// AsToolError unwraps err into a *ToolError if there is one.
func AsToolError(err error) (*ToolError, bool) {
	var te *ToolError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// tailPatterns maps lower-cased output substrings to error kinds.
// Classification scans the trailing lines of combined output; the
// first matching category in this order wins:
// rate limit, access denied, not found, timeout.
var tailPatterns = []struct {
	kind     ErrorKind
	patterns []string
}{
	{ErrRateLimited, []string{"rate limit exceeded", "too many requests", "http 429"}},
	{ErrAccessDenied, []string{"access denied", "item is private", "requires purchase"}},
	{ErrNotFound, []string{"no subscription", "file not found", "invalid workshop item", "failure to find"}},
	{ErrTimedOut, []string{"timeout", "failed to connect"}},
}

// classifyOutput inspects the trailing output lines and the exit code
// and produces a ToolError, or nil when the run is considered a
// success. Pattern hits override a zero exit code: SteamCMD is known
// to exit 0 after printing download errors.
func classifyOutput(tail []string, exitCode int) *ToolError {
	joined := strings.ToLower(strings.Join(tail, "\n"))
	for _, entry := range tailPatterns {
		for _, p := range entry.patterns {
			if strings.Contains(joined, p) {
				return &ToolError{Kind: entry.kind, ExitCode: exitCode, Tail: tail}
			}
		}
	}
	if exitCode != 0 {
		return &ToolError{Kind: ErrFailed, ExitCode: exitCode, Tail: tail}
	}
	return nil
}
