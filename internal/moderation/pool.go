package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/questionit/api/internal/errors"
)

var (
	// ErrModerationUnavailable indicates the moderation status could not be determined.
	ErrModerationUnavailable = apperrors.New("moderation unavailable")

	// ErrPoolClosed indicates work submitted to a closed pool.
	ErrPoolClosed = apperrors.Wrap(ErrModerationUnavailable, "moderation pool closed")
)

// PoolOptions sizes a Pool.
type PoolOptions struct {
	// Size caps the number of workers.
	Size int
	// SpawnThreshold is the in-flight work per worker above which a new worker starts.
	SpawnThreshold int
	// IdleTimeout stops a worker after this long without work.
	IdleTimeout time.Duration
	Logger      *slog.Logger
}

type job struct {
	fn   func()
	done chan error
}

// Pool runs moderation work off the request goroutine on a bounded set of workers.
//
// Workers start lazily: the first submission starts one, and another starts whenever the
// in-flight work per worker exceeds the spawn threshold, up to Size. A worker stops after
// IdleTimeout without work, except the last one while work is still in flight.
type Pool struct {
	opts PoolOptions
	jobs chan job
	quit chan struct{}
	wg   sync.WaitGroup

	mu       sync.Mutex
	workers  int
	inFlight int
	closed   bool
}

// NewPool creates a Pool. No worker runs until work is submitted.
func NewPool(opts PoolOptions) *Pool {
	if opts.Size < 1 {
		opts.Size = 1
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = time.Minute
	}
	return &Pool{
		opts: opts,
		jobs: make(chan job),
		quit: make(chan struct{}),
	}
}

// Do runs fn on a worker and waits for it. A panic in fn is reported as
// ErrModerationUnavailable.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.inFlight++
	if p.workers == 0 || (p.workers < p.opts.Size && p.inFlight > p.workers*p.opts.SpawnThreshold) {
		p.workers++
		p.wg.Add(1)
		go p.worker()
	}
	p.mu.Unlock()

	j := job{fn: fn, done: make(chan error, 1)}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		p.finish()
		return ctx.Err()
	case <-p.quit:
		p.finish()
		return ErrPoolClosed
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) finish() {
	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	idle := time.NewTimer(p.opts.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case j := <-p.jobs:
			j.done <- p.run(j.fn)
			p.finish()
			idle.Reset(p.opts.IdleTimeout)
		case <-idle.C:
			p.mu.Lock()
			if p.workers == 1 && p.inFlight > 0 {
				p.mu.Unlock()
				idle.Reset(p.opts.IdleTimeout)
				continue
			}
			p.workers--
			p.mu.Unlock()
			return
		case <-p.quit:
			p.mu.Lock()
			p.workers--
			p.mu.Unlock()
			return
		}
	}
}

func (p *Pool) run(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if p.opts.Logger != nil {
				p.opts.Logger.Error("moderation worker panicked", slog.Any("panic", r))
			}
			err = fmt.Errorf("%w: %v", ErrModerationUnavailable, r)
		}
	}()
	fn()
	return nil
}

// Workers returns the number of running workers.
func (p *Pool) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

// Close stops every worker and waits for them. Work submitted afterwards fails with
// ErrPoolClosed.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.quit)
	p.mu.Unlock()

	p.wg.Wait()
}
