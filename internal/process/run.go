package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/giantswarm/pgenv/internal/pgerr"
	"github.com/giantswarm/pgenv/internal/sentinel"
)

// ErrEmptyCmdPath is returned when a Command has no executable path.
const ErrEmptyCmdPath = sentinel.Error("command path must not be empty")

// killDrainTimeout is the upper bound for collecting the exit status after
// the process group has been killed.
const killDrainTimeout = 10 * time.Second

// pipeWaitDelay bounds how long Wait keeps reading stdout/stderr after the
// child exited. pg_ctl start leaves a daemonised server behind that could
// otherwise hold the pipes open.
const pipeWaitDelay = 2 * time.Second

// outputLimit caps the captured stdout and stderr of a command.
const outputLimit = 64 << 10

// Command describes one invocation of a postgresql tool.
type Command struct {
	Op      Operation
	Path    string
	Args    []string
	Timeout time.Duration // zero waits until the command exits or ctx is done
	Logger  *slog.Logger  // nil uses slog.Default()
}

// Run executes c and waits for it to finish.
//
// A zero exit status returns nil. Every failure is a *pgerr.Error whose Kind
// is c.Op.FailureKind(): a spawn failure wraps the OS error, a non-zero exit
// carries the command's stderr, and an expired Timeout wraps pgerr.ErrTimeout.
// When the timeout expires or ctx is canceled the whole process group is
// killed and reaped before Run returns.
func Run(ctx context.Context, c Command) error {
	kind, name := c.Op.FailureKind(), c.Op.String()
	fail := func(err error) error {
		return &pgerr.Error{Kind: kind, Op: name, Path: c.Path, Err: err}
	}

	if c.Path == "" {
		return fail(ErrEmptyCmdPath)
	}
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr boundedBuffer
	cmd := exec.Command(c.Path, c.Args...) //nolint:gosec // G204: executables come from the binaries cache
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = pipeWaitDelay
	configureSysProcAttr(cmd)

	log.Debug("running command", "op", name, "path", c.Path, "args", c.Args)
	start := time.Now()

	if err := cmd.Start(); err != nil {
		return fail(err)
	}

	// cmd.Wait must be called exactly once; its result is consumed either by
	// the normal completion branch or by drainDone after a kill.
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err == nil || errors.Is(err, exec.ErrWaitDelay) {
			// ErrWaitDelay means the command exited with status 0 but a
			// daemonised child kept the output pipes open.
			log.Debug("command finished", "op", name, "elapsed", time.Since(start))
			return nil
		}
		return fail(exitCause(err, stderr.String(), stdout.String()))

	case <-runCtx.Done():
		killProcessGroup(cmd)
		if ok, _ := drainDone(done, killDrainTimeout); !ok {
			log.Warn("command did not exit after kill; process may be orphaned",
				"op", name, "pid", cmd.Process.Pid)
		}

		cause := ctx.Err()
		if cause == nil {
			cause = fmt.Errorf("%w after %s", pgerr.ErrTimeout, c.Timeout)
		}
		log.Warn("command aborted", "op", name, "elapsed", time.Since(start), "err", cause)
		return fail(cause)
	}
}

// exitCause combines the Wait error with the command's diagnostic output.
// pg_ctl reports most failures on stderr; stdout is the fallback.
func exitCause(waitErr error, stderr, stdout string) error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = strings.TrimSpace(stdout)
	}
	if msg == "" {
		return waitErr
	}
	return fmt.Errorf("%w: %s", waitErr, msg)
}

// ExitCode returns the exit status carried by err, or -1 when err does not
// come from a process that exited.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// drainDone reads from done with timeout as a hard upper bound. It reports
// whether a value arrived and, if so, the cmd.Wait error.
func drainDone(done <-chan error, timeout time.Duration) (bool, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case err := <-done:
		return true, err
	case <-t.C:
		return false, nil
	}
}

// boundedBuffer keeps the first outputLimit bytes written to it and discards
// the rest. It is safe for the concurrent writes exec makes when Stdout and
// Stderr are distinct.
type boundedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if room := outputLimit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
