package poll

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Refresher is anything that can re-synchronize itself with the API.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) error

// Refresh calls f(ctx).
func (f RefreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

// barrier is implemented by targets that can fence out in-flight writes
// after their context has been cancelled (state.Store does).
type barrier interface {
	Barrier()
}

// Ticker is the subset of time.Ticker the scheduler needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// Scheduler attaches recurring refreshes to views. Each view has at most one
// live Handle at a time.
type Scheduler struct {
	logger    *zap.Logger
	newTicker TickerFunc

	mu      sync.Mutex
	handles map[string]*Handle
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for lease lifecycle and refresh failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTicker replaces the ticker factory, mainly for tests.
func WithTicker(fn TickerFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.newTicker = fn
		}
	}
}

// NewScheduler builds an empty Scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:    zap.NewNop(),
		newTicker: newStdTicker,
		handles:   make(map[string]*Handle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate starts refreshing target for view: once immediately, then every
// interval until the returned Handle is deactivated or ctx ends. A
// non-positive interval performs the single immediate refresh only. Any live
// handle for the same view is retired first.
//
// Refresh errors are logged and polling continues on schedule.
func (s *Scheduler) Activate(ctx context.Context, view string, interval time.Duration, target Refresher) *Handle {
	if ctx == nil {
		ctx = context.Background()
	}
	leaseCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		view:     view,
		interval: interval,
		target:   target,
		ctx:      leaseCtx,
		cancel:   cancel,
		done:     make(chan struct{}),
		sched:    s,
	}

	s.mu.Lock()
	prev := s.handles[view]
	s.handles[view] = h
	s.mu.Unlock()

	if prev != nil {
		prev.retire()
		s.logger.Debug("poll lease replaced", zap.String("view", view))
	}

	s.logger.Debug("poll lease activated",
		zap.String("view", view),
		zap.Duration("interval", interval),
	)
	go h.run(s.newTicker, s.logger)
	return h
}

// Deactivate retires h. It is safe to call any number of times and with a
// nil handle.
func (s *Scheduler) Deactivate(h *Handle) {
	if h == nil {
		return
	}
	s.mu.Lock()
	if s.handles[h.view] == h {
		delete(s.handles, h.view)
	}
	s.mu.Unlock()

	if h.retire() {
		s.logger.Debug("poll lease deactivated", zap.String("view", h.view))
	}
}

// Active reports whether view currently holds a live lease.
func (s *Scheduler) Active(view string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handles[view]
	return ok
}

// RefreshNow runs an out-of-band refresh for view on its live lease, in the
// caller's goroutine. It reports false without refreshing when the view has
// no lease: the next activation fetches immediately anyway, and a torn-down
// view must not be written. The refresh is cancelled if either ctx or the
// lease ends.
func (s *Scheduler) RefreshNow(ctx context.Context, view string) (bool, error) {
	s.mu.Lock()
	h := s.handles[view]
	s.mu.Unlock()
	if h == nil || !h.Active() {
		return false, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	refreshCtx, cancel := context.WithCancel(h.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return true, h.target.Refresh(refreshCtx)
}

// Close retires every live lease.
func (s *Scheduler) Close() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.handles = make(map[string]*Handle)
	s.mu.Unlock()

	for _, h := range handles {
		h.retire()
	}
}

// Handle is the lease for one active recurring refresh.
type Handle struct {
	view     string
	interval time.Duration
	target   Refresher
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	sched    *Scheduler

	once sync.Once
}

// View returns the view the lease is bound to.
func (h *Handle) View() string { return h.view }

// Interval returns the refresh interval; zero means fetch-once.
func (h *Handle) Interval() time.Duration { return h.interval }

// Active reports whether the lease has not been retired.
func (h *Handle) Active() bool {
	return h.ctx.Err() == nil
}

// Deactivate retires the lease. Idempotent.
func (h *Handle) Deactivate() {
	if h == nil {
		return
	}
	h.sched.Deactivate(h)
}

// Done is closed once the lease's refresh loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// retire cancels the lease context and fences out in-flight writes. It
// reports whether this call did the retiring.
func (h *Handle) retire() bool {
	did := false
	h.once.Do(func() {
		did = true
		h.cancel()
		if b, ok := h.target.(barrier); ok {
			b.Barrier()
		}
	})
	return did
}

func (h *Handle) run(newTicker TickerFunc, logger *zap.Logger) {
	defer close(h.done)

	h.refresh(logger)
	if h.interval <= 0 {
		return
	}

	ticker := newTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C():
			if h.ctx.Err() != nil {
				return
			}
			h.refresh(logger)
		}
	}
}

func (h *Handle) refresh(logger *zap.Logger) {
	if h.ctx.Err() != nil {
		return
	}
	if err := h.target.Refresh(h.ctx); err != nil && h.ctx.Err() == nil {
		logger.Warn("poll refresh failed",
			zap.String("view", h.view),
			zap.Error(err),
		)
	}
}
