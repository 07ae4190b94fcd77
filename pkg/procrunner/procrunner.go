// Package procrunner starts and supervises the long-lived game server
// and headless client processes. Each child gets its own log file; the
// runner only tracks liveness, it does not restart anything.
package procrunner

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tacticalops/armalaunch/pkg/errors"
	"github.com/tacticalops/armalaunch/pkg/logging"
)

// stopGrace is how long a child gets to exit after SIGTERM before the
// runner escalates to SIGKILL.
const stopGrace = 10 * time.Second

// Proc is a single supervised child process.
type Proc struct {
	Name    string
	Cmd     *exec.Cmd
	LogPath string

	done chan struct{}
	err  error
}

// Runner starts named child processes and stops them as a group.
type Runner struct {
	logDir string
	grace  time.Duration
	log    zerolog.Logger

	mu    sync.Mutex
	procs []*Proc
}

// NewRunner returns a runner writing per-process logs under logDir.
func NewRunner(logDir string) *Runner {
	return &Runner{
		logDir: logDir,
		grace:  stopGrace,
		log:    logging.GetLogger("procrunner"),
	}
}

// Start launches a named child in workDir with stdout and stderr sent
// to <logDir>/<name>.log. The returned Proc is already tracked by the
// runner.
func (r *Runner) Start(name, workDir string, argv []string) (*Proc, error) {
	if len(argv) == 0 {
		return nil, errors.New(errors.ErrConfigValid, "empty command for process "+name)
	}
	if err := os.MkdirAll(r.logDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create log dir %s", r.logDir)
	}

	logPath := filepath.Join(r.logDir, name+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to open log file %s", logPath)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = workDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return nil, errors.Wrapf(err, errors.ErrToolFailed, "failed to start %s", name)
	}

	p := &Proc{
		Name:    name,
		Cmd:     cmd,
		LogPath: logPath,
		done:    make(chan struct{}),
	}
	go func() {
		p.err = cmd.Wait()
		logFile.Close()
		close(p.done)
	}()

	r.log.Info().
		Str("name", name).
		Int("pid", cmd.Process.Pid).
		Str("log", logPath).
		Msg("Started process")

	r.mu.Lock()
	r.procs = append(r.procs, p)
	r.mu.Unlock()
	return p, nil
}

// Running reports whether the child is still alive.
func (p *Proc) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the child exits and returns its exit error.
func (p *Proc) Wait() error {
	<-p.done
	return p.err
}

// Find returns the tracked process with the given name, or nil.
func (r *Runner) Find(name string) *Proc {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.procs {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Status returns a name to liveness map for all tracked processes.
func (r *Runner) Status() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(r.procs))
	for _, p := range r.procs {
		out[p.Name] = p.Running()
	}
	return out
}

// StopAll terminates every tracked process, SIGTERM first and SIGKILL
// after the grace period, then clears the tracked set.
func (r *Runner) StopAll() {
	r.mu.Lock()
	procs := r.procs
	r.procs = nil
	r.mu.Unlock()

	for _, p := range procs {
		if !p.Running() {
			continue
		}
		r.log.Info().Str("name", p.Name).Int("pid", p.Cmd.Process.Pid).Msg("Stopping process")
		if err := p.Cmd.Process.Signal(syscall.SIGTERM); err != nil {
			r.log.Warn().Err(err).Str("name", p.Name).Msg("Failed to signal process")
		}
	}

	// The grace period is shared by the whole group. An absolute
	// deadline with a fresh timer per process keeps escalation working
	// after the first kill; a single time.After channel only ever
	// delivers once.
	deadline := time.Now().Add(r.grace)
	for _, p := range procs {
		timer := time.NewTimer(time.Until(deadline))
		select {
		case <-p.done:
			timer.Stop()
		case <-timer.C:
			r.log.Warn().Str("name", p.Name).Msg("Process did not exit in time, killing")
			_ = p.Cmd.Process.Kill()
			<-p.done
		}
	}
}
