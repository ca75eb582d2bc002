package state

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type item struct {
	ID     int
	Title  string
	Status string
}

type result struct {
	items []item
	err   error
}

// gatedFetcher hands each call its own channel so tests decide resolution order.
type gatedFetcher struct {
	mu      sync.Mutex
	calls   int
	gates   []chan result
	started chan int
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{started: make(chan int, 16)}
}

func (f *gatedFetcher) fetch(ctx context.Context) ([]item, error) {
	gate := make(chan result, 1)
	f.mu.Lock()
	f.gates = append(f.gates, gate)
	f.calls++
	n := f.calls
	f.mu.Unlock()
	f.started <- n

	res := <-gate
	return res.items, res.err
}

func (f *gatedFetcher) resolve(n int, res result) {
	f.mu.Lock()
	gate := f.gates[n-1]
	f.mu.Unlock()
	gate <- res
}

func (f *gatedFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func staticFetch(items []item, err error) FetchFunc[[]item] {
	return func(context.Context) ([]item, error) { return items, err }
}

func TestStore_RefreshReplacesSnapshot(t *testing.T) {
	s := NewStore("orders", staticFetch([]item{{ID: 1}, {ID: 2}}, nil))

	before := time.Now()
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	st := s.State()
	if !st.HasSnapshot || len(st.Snapshot) != 2 || st.Snapshot[0].ID != 1 {
		t.Fatalf("snapshot = %#v, want 2 items", st.Snapshot)
	}
	if !reflect.DeepEqual(st.Visible, st.Snapshot) {
		t.Fatalf("Visible = %#v, want snapshot without filter", st.Visible)
	}
	if st.Loading {
		t.Fatalf("Loading = true after resolution")
	}
	if st.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", st.LastUpdated, before)
	}
	if st.LastError != nil {
		t.Fatalf("LastError = %v, want nil", st.LastError)
	}
	if s.Name() != "orders" {
		t.Fatalf("Name = %q", s.Name())
	}
}

func TestStore_FailureKeepsPreviousSnapshot(t *testing.T) {
	var fail bool
	origErr := errors.New("boom")
	s := NewStore("orders", func(context.Context) ([]item, error) {
		if fail {
			return nil, origErr
		}
		return []item{{ID: 1}}, nil
	})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	fail = true
	if err := s.Refresh(context.Background()); !errors.Is(err, origErr) {
		t.Fatalf("Refresh error = %v, want boom", err)
	}

	st := s.State()
	if !st.HasSnapshot || len(st.Snapshot) != 1 || st.Snapshot[0].ID != 1 {
		t.Fatalf("snapshot changed on error: %#v", st.Snapshot)
	}
	if st.LastError == nil || st.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", st.LastError)
	}
	if reflect.ValueOf(st.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("State should clone error instance")
	}
	if st.Loading {
		t.Fatalf("Loading = true after failed resolution")
	}

	fail = false
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if st := s.State(); st.LastError != nil || !st.HasSnapshot {
		t.Fatalf("success should clear error: %#v", st)
	}
}

func TestStore_SnapshotNeverAbsentBetweenFailureAndSuccess(t *testing.T) {
	f := newGatedFetcher()
	s := NewStore("orders", f.fetch)

	go func() { _ = s.Refresh(context.Background()) }()
	<-f.started
	f.resolve(1, result{items: []item{{ID: 1}}})
	waitFor(t, func() bool { return s.State().HasSnapshot })

	done := make(chan struct{})
	go func() { _ = s.Refresh(context.Background()); close(done) }()
	<-f.started
	if st := s.State(); !st.Loading || !st.HasSnapshot {
		t.Fatalf("in-flight state = %#v, want loading with previous snapshot", st)
	}
	f.resolve(2, result{err: errors.New("offline")})
	<-done
	if st := s.State(); !st.HasSnapshot || st.Snapshot[0].ID != 1 {
		t.Fatalf("snapshot lost after failure: %#v", st)
	}

	done = make(chan struct{})
	go func() { _ = s.Refresh(context.Background()); close(done) }()
	<-f.started
	if st := s.State(); !st.HasSnapshot {
		t.Fatalf("snapshot absent while refetching after failure")
	}
	f.resolve(3, result{items: []item{{ID: 1, Status: "fulfilled"}}})
	<-done
	if st := s.State(); st.Snapshot[0].Status != "fulfilled" || st.LastError != nil {
		t.Fatalf("state = %#v, want fresh snapshot", st)
	}
}

func TestStore_DiscardsOutOfOrderResponse(t *testing.T) {
	f := newGatedFetcher()
	s := NewStore("dashboard", f.fetch)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() { defer wg.Done(); _ = s.Refresh(context.Background()) }()
	<-f.started // R1
	wg.Add(1)
	go func() { defer wg.Done(); _ = s.Refresh(context.Background()) }()
	<-f.started // R2

	// R2 resolves first.
	f.resolve(2, result{items: []item{{ID: 2, Title: "newer"}}})
	waitFor(t, func() bool { return s.State().HasSnapshot })
	if st := s.State(); st.Loading {
		t.Fatalf("Loading = true after latest refresh resolved")
	}

	// R1 arrives late and must be ignored.
	f.resolve(1, result{items: []item{{ID: 1, Title: "older"}}})
	wg.Wait()

	st := s.State()
	if len(st.Snapshot) != 1 || st.Snapshot[0].Title != "newer" {
		t.Fatalf("snapshot = %#v, want R2 result", st.Snapshot)
	}
}

func TestStore_EarlierResultAppliedWhileLaterStillLoading(t *testing.T) {
	f := newGatedFetcher()
	s := NewStore("dashboard", f.fetch)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() { defer wg.Done(); _ = s.Refresh(context.Background()) }()
		<-f.started
	}

	f.resolve(1, result{items: []item{{ID: 1}}})
	waitFor(t, func() bool { return s.State().HasSnapshot })
	if st := s.State(); !st.Loading {
		t.Fatalf("Loading = false while a later refresh is outstanding")
	}

	f.resolve(2, result{items: []item{{ID: 2}}})
	wg.Wait()
	if st := s.State(); st.Loading || st.Snapshot[0].ID != 2 {
		t.Fatalf("state = %#v, want R2 applied and not loading", st)
	}
}

func TestStore_CancelledRefreshIsDropped(t *testing.T) {
	f := newGatedFetcher()
	s := NewStore("orders", f.fetch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Refresh(ctx) }()
	<-f.started

	cancel()
	s.Barrier()
	f.resolve(1, result{items: []item{{ID: 99}}})
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Refresh error = %v, want context.Canceled", err)
	}

	if st := s.State(); st.HasSnapshot || st.LastError != nil {
		t.Fatalf("cancelled refresh wrote state: %#v", st)
	}

	if err := s.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Refresh on cancelled ctx = %v, want context.Canceled", err)
	}
	if f.count() != 1 {
		t.Fatalf("fetch calls = %d, want 1 (no fetch on cancelled ctx)", f.count())
	}
}

func TestStore_RefreshCancelledWhileWaitingNeverStarts(t *testing.T) {
	var fetched atomic.Bool
	s := NewStore("orders", func(context.Context) ([]item, error) {
		fetched.Store(true)
		return []item{{ID: 1}}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// Hold the lock so Refresh passes its first ctx check and then blocks.
	s.mu.Lock()
	go func() { done <- s.Refresh(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	s.mu.Unlock()
	s.Barrier()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Refresh error = %v, want context.Canceled", err)
	}
	if st := s.State(); st.Loading || st.HasSnapshot {
		t.Fatalf("state = %#v, want untouched after cancelled refresh", st)
	}
	if fetched.Load() {
		t.Fatal("fetch ran after the owner cancelled")
	}
}

func TestStore_FilterIsIndependentOfFetch(t *testing.T) {
	calls := 0
	s := NewStore("products", func(context.Context) ([]item, error) {
		calls++
		return []item{{ID: 1, Title: "Desk Lamp"}, {ID: 2, Title: "Coffee Mug"}, {ID: 3, Title: "Phone Stand"}}, nil
	})
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	s.SetFilter(TitleFilter("lamp", func(i item) string { return i.Title }))

	st := s.State()
	if len(st.Visible) != 1 || st.Visible[0].ID != 1 {
		t.Fatalf("Visible = %#v, want only the lamp", st.Visible)
	}
	if len(st.Snapshot) != 3 {
		t.Fatalf("Snapshot = %#v, want untouched 3 items", st.Snapshot)
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}

	// Filter survives a refresh.
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if st := s.State(); len(st.Visible) != 1 {
		t.Fatalf("Visible after refresh = %#v, want filter reapplied", st.Visible)
	}

	s.SetFilter(TitleFilter("  ", func(i item) string { return i.Title }))
	if st := s.State(); len(st.Visible) != 3 {
		t.Fatalf("Visible = %#v, want all items with empty filter", st.Visible)
	}
}

func TestStore_FilterBeforeFirstSnapshot(t *testing.T) {
	s := NewStore("products", staticFetch([]item{{Title: "Mug"}, {Title: "Lamp"}}, nil))
	s.SetFilter(TitleFilter("MUG", func(i item) string { return i.Title }))
	if st := s.State(); st.HasSnapshot || st.Visible != nil {
		t.Fatalf("state = %#v, want empty before first fetch", st)
	}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if st := s.State(); len(st.Visible) != 1 || st.Visible[0].Title != "Mug" {
		t.Fatalf("Visible = %#v, want Mug", st.Visible)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var err error
	s := NewStore("orders", func(context.Context) ([]item, error) { return nil, err })

	if s.State().IsOffline() {
		t.Fatal("IsOffline() = true, want false before any refresh")
	}

	err = errors.New("fail 1")
	_ = s.Refresh(context.Background())
	if st := s.State(); st.ConsecutiveFailures != 1 || st.IsOffline() {
		t.Fatalf("after 1 failure: %#v", st)
	}

	err = errors.New("fail 2")
	_ = s.Refresh(context.Background())
	if st := s.State(); st.ConsecutiveFailures != 2 || !st.IsOffline() {
		t.Fatalf("after 2 failures: %#v", st)
	}

	err = nil
	_ = s.Refresh(context.Background())
	if st := s.State(); st.ConsecutiveFailures != 0 || st.IsOffline() {
		t.Fatalf("success should reset failures: %#v", st)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
