package ocr

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// DefaultTimeout bounds a single external tool invocation.
const DefaultTimeout = 2 * time.Minute

const waitDelay = 5 * time.Second

// Output holds what an external tool printed.
type Output struct {
	Stdout []byte
	// Combined interleaves stdout and stderr in write order.
	Combined []byte
}

// Runner starts an external tool and waits for it to exit. A non-zero exit
// is reported as an error alongside whatever output was captured.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// ExecRunner runs tools with os/exec.
type ExecRunner struct {
	// Timeout caps each invocation. Zero means no limit.
	Timeout time.Duration
}

// NewExecRunner returns an ExecRunner with the default timeout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Timeout: DefaultTimeout}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	combined := &lockedBuffer{}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.MultiWriter(&stdout, combined)
	cmd.Stderr = combined
	// Children that inherit the pipes must not hold Wait open forever.
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	zerolog.Ctx(ctx).Debug().
		Str("tool", name).
		Strs("args", args).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("external tool finished")

	out := Output{Stdout: stdout.Bytes(), Combined: combined.Bytes()}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return out, eris.Wrapf(err, "%s timed out", name)
		}
		return out, err
	}
	return out, nil
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Bytes()
}

// LimitRunner bounds the number of tools running at once.
type LimitRunner struct {
	next Runner
	sem  *semaphore.Weighted
}

// NewLimitRunner wraps next. A limit of zero or less returns next unchanged.
func NewLimitRunner(next Runner, limit int64) Runner {
	if limit <= 0 {
		return next
	}
	return &LimitRunner{next: next, sem: semaphore.NewWeighted(limit)}
}

func (r *LimitRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Output{}, eris.Wrapf(err, "waiting to run %s", name)
	}
	defer r.sem.Release(1)
	return r.next.Run(ctx, name, args...)
}
