package circcoords

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// UpstreamFunc runs the external persistence computation: landmark selection,
// distance matrices, the dimension-1 diagram and its representative cocycles.
// It receives the Config so it can honor FieldPrime, MaxHomologyDimension and
// LandmarkCount, and should return promptly once ctx is cancelled.
type UpstreamFunc func(ctx context.Context, cfg Config) (*Snapshot, error)

// Upstream is a readiness handle for one run of an UpstreamFunc.
type Upstream struct {
	done      chan struct{}
	cancel    context.CancelFunc
	cancelled atomic.Bool

	// snap and err are written once before done is closed.
	snap *Snapshot
	err  error
}

// StartUpstream runs fn in its own goroutine and returns a handle to its
// eventual snapshot. Cancelling ctx or calling Cancel invalidates the handle.
func StartUpstream(ctx context.Context, cfg Config, fn UpstreamFunc) *Upstream {
	ctx, cancel := context.WithCancel(ctx)
	u := &Upstream{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(u.done)
		defer cancel()
		snap, err := fn(ctx, cfg)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err == nil && snap == nil {
			err = errors.New("circcoords: upstream returned no snapshot")
		}
		u.snap, u.err = snap, err
	}()
	return u
}

// Done returns a channel closed once the upstream computation settles.
func (u *Upstream) Done() <-chan struct{} { return u.done }

// Ready reports whether the computation settled with a usable snapshot.
func (u *Upstream) Ready() bool {
	select {
	case <-u.done:
		return u.err == nil && !u.cancelled.Load()
	default:
		return false
	}
}

// Cancel invalidates the handle and cancels the computation's context.
// Any run still using the handle reports ErrPrecursorNotReady.
func (u *Upstream) Cancel() {
	u.cancelled.Store(true)
	u.cancel()
}

// Cancelled reports whether Cancel was called.
func (u *Upstream) Cancelled() bool { return u.cancelled.Load() }

// Wait blocks until the computation settles or ctx is done. A failed,
// cancelled or abandoned computation yields an error wrapping
// ErrPrecursorNotReady.
func (u *Upstream) Wait(ctx context.Context) (*Snapshot, error) {
	select {
	case <-u.done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrPrecursorNotReady, ctx.Err())
	}
	if u.cancelled.Load() {
		return nil, fmt.Errorf("%w: upstream computation was cancelled", ErrPrecursorNotReady)
	}
	if u.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecursorNotReady, u.err)
	}
	return u.snap, nil
}

// ComputeFromUpstream waits for u to settle and runs [Compute] on its
// snapshot. The selection is checked first; a nil handle means the upstream
// computation was never started. If u is cancelled while the pipeline runs,
// the result is discarded.
func ComputeFromUpstream(ctx context.Context, u *Upstream, selected []int, cfg Config) (*Result, error) {
	if len(selected) == 0 {
		return nil, ErrSelection
	}
	if u == nil {
		return nil, fmt.Errorf("%w: upstream computation has not been started", ErrPrecursorNotReady)
	}
	snap, err := u.Wait(ctx)
	if err != nil {
		return nil, err
	}
	res, err := Compute(selected, snap, cfg)
	if err != nil {
		return nil, err
	}
	if u.Cancelled() {
		return nil, fmt.Errorf("%w: upstream computation was superseded", ErrPrecursorNotReady)
	}
	return res, nil
}

// Session pairs an immutable Config with the most recent upstream
// computation. Recompute replaces the computation; Compute always runs
// against whichever computation is current when it is called.
type Session struct {
	cfg Config

	mu      sync.Mutex
	current *Upstream
}

// NewSession validates cfg and returns a Session with no upstream
// computation started.
func NewSession(cfg Config) (*Session, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &Session{cfg: cfg}, nil
}

// Config returns the session's configuration.
func (s *Session) Config() Config { return s.cfg }

// Recompute cancels the current upstream computation, if any, and starts fn.
func (s *Session) Recompute(ctx context.Context, fn UpstreamFunc) *Upstream {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Cancel()
	}
	s.current = StartUpstream(ctx, s.cfg, fn)
	return s.current
}

// Upstream returns the current upstream handle, or nil.
func (s *Session) Upstream() *Upstream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Compute waits for the current upstream computation and runs the pipeline.
func (s *Session) Compute(ctx context.Context, selected []int) (*Result, error) {
	return ComputeFromUpstream(ctx, s.Upstream(), selected, s.cfg)
}
