package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/hrms/internal/domain/models"
	"go.uber.org/zap"
)

func newTestCache() *Cache {
	return New(Options{Size: 16}, zap.NewNop())
}

func page(n int64) models.Paginated[int] {
	return models.Paginated[int]{Data: []int{int(n)}, TotalCount: n}
}

// gatedLoader blocks until gate is closed and counts its calls.
func gatedLoader(calls *atomic.Int32, gate <-chan struct{}, result models.Paginated[int]) Loader[int] {
	return func(ctx context.Context) (models.Paginated[int], error) {
		calls.Add(1)
		<-gate
		return result, nil
	}
}

func waitResolved[T any](t *testing.T, h *Handle[T]) State[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := h.Wait(ctx)
	if err != nil {
		t.Fatalf("handle %s did not resolve: %v", h.Key(), err)
	}
	return st
}

var vacKey = Key{Tenant: "t1", Entity: models.EntityVacations, Limit: 1}

func TestWatch_ConcurrentCallersShareOneLoad(t *testing.T) {
	c := newTestCache()
	var calls atomic.Int32
	gate := make(chan struct{})
	load := gatedLoader(&calls, gate, page(7))

	const n = 10
	handles := make([]*Handle[int], n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = Watch(context.Background(), c, vacKey, load)
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		if st := h.State(); !st.IsLoading || st.Data != nil {
			t.Fatalf("expected loading state before release, got %+v", st)
		}
	}
	close(gate)

	for _, h := range handles {
		st := waitResolved(t, h)
		if st.Data == nil || st.Data.TotalCount != 7 {
			t.Errorf("unexpected state %+v", st)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("loader called %d times, want 1", got)
	}
}

func TestWatch_ResolvedPageIsCached(t *testing.T) {
	c := newTestCache()
	var calls atomic.Int32
	gate := make(chan struct{})
	close(gate)
	load := gatedLoader(&calls, gate, page(3))

	waitResolved(t, Watch(context.Background(), c, vacKey, load))

	h := Watch(context.Background(), c, vacKey, load)
	st := h.State()
	if st.IsLoading || st.Data == nil || st.Data.TotalCount != 3 {
		t.Fatalf("expected cached page resolved immediately, got %+v", st)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("loader called %d times, want 1", got)
	}
}

func TestWatch_DifferentKeysLoadSeparately(t *testing.T) {
	c := newTestCache()
	var calls atomic.Int32
	gate := make(chan struct{})
	close(gate)
	load := gatedLoader(&calls, gate, page(1))

	other := vacKey
	other.Offset = 10
	waitResolved(t, Watch(context.Background(), c, vacKey, load))
	waitResolved(t, Watch(context.Background(), c, other, load))

	if got := calls.Load(); got != 2 {
		t.Errorf("loader called %d times, want 2", got)
	}
}

func TestInvalidate_ForcesReload(t *testing.T) {
	c := newTestCache()
	var calls atomic.Int32
	gate := make(chan struct{})
	close(gate)
	load := gatedLoader(&calls, gate, page(1))

	waitResolved(t, Watch(context.Background(), c, vacKey, load))
	c.Invalidate(vacKey.Tenant, vacKey.Entity)
	if c.Len() != 0 {
		t.Errorf("cache holds %d pages after invalidate", c.Len())
	}
	waitResolved(t, Watch(context.Background(), c, vacKey, load))

	if got := calls.Load(); got != 2 {
		t.Errorf("loader called %d times, want 2", got)
	}
}

func TestInvalidate_OnlyAffectsOneTenantEntity(t *testing.T) {
	c := newTestCache()
	var calls atomic.Int32
	gate := make(chan struct{})
	close(gate)
	load := gatedLoader(&calls, gate, page(1))

	otherTenant := vacKey
	otherTenant.Tenant = "t2"
	otherEntity := vacKey
	otherEntity.Entity = models.EntityPayrolls

	for _, k := range []Key{vacKey, otherTenant, otherEntity} {
		waitResolved(t, Watch(context.Background(), c, k, load))
	}
	c.Invalidate(vacKey.Tenant, vacKey.Entity)

	if c.Len() != 2 {
		t.Errorf("cache holds %d pages, want 2", c.Len())
	}
}

func TestWatch_StaleLoadIsNotStored(t *testing.T) {
	c := newTestCache()
	var calls atomic.Int32
	oldGate := make(chan struct{})
	newGate := make(chan struct{})

	older := Watch(context.Background(), c, vacKey, gatedLoader(&calls, oldGate, page(1)))
	c.Invalidate(vacKey.Tenant, vacKey.Entity)
	newer := Watch(context.Background(), c, vacKey, gatedLoader(&calls, newGate, page(2)))

	close(newGate)
	if st := waitResolved(t, newer); st.Data.TotalCount != 2 {
		t.Fatalf("newer handle got %+v", st)
	}
	close(oldGate)
	if st := waitResolved(t, older); st.Data.TotalCount != 1 {
		t.Fatalf("older handle got %+v", st)
	}

	h := Watch(context.Background(), c, vacKey, gatedLoader(&calls, nil, page(99)))
	st := h.State()
	if st.IsLoading || st.Data.TotalCount != 2 {
		t.Errorf("cache should hold the newer page, got %+v", st)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("loader called %d times, want 2", got)
	}
}

func TestWatch_ErrorsAreNotCached(t *testing.T) {
	c := newTestCache()
	boom := errors.New("boom")
	var calls atomic.Int32
	load := func(ctx context.Context) (models.Paginated[int], error) {
		if calls.Add(1) == 1 {
			return models.Paginated[int]{}, boom
		}
		return page(4), nil
	}

	st := waitResolved(t, Watch(context.Background(), c, vacKey, load))
	if !errors.Is(st.Err, boom) || st.Data != nil || st.IsLoading {
		t.Fatalf("expected failed state, got %+v", st)
	}

	st = waitResolved(t, Watch(context.Background(), c, vacKey, load))
	if st.Err != nil || st.Data == nil || st.Data.TotalCount != 4 {
		t.Errorf("expected retry on next watch to succeed, got %+v", st)
	}
}

func TestWatch_EmptyPageIsLoaded(t *testing.T) {
	c := newTestCache()
	load := func(ctx context.Context) (models.Paginated[int], error) {
		return models.Paginated[int]{}, nil
	}
	st := waitResolved(t, Watch(context.Background(), c, vacKey, load))
	if st.Data == nil || st.IsLoading || st.Err != nil {
		t.Errorf("empty page should be loaded, got %+v", st)
	}
}

func TestWatch_LoadSurvivesCallerCancel(t *testing.T) {
	c := newTestCache()
	ctx, cancel := context.WithCancel(context.Background())
	load := func(lctx context.Context) (models.Paginated[int], error) {
		cancel()
		if err := lctx.Err(); err != nil {
			return models.Paginated[int]{}, err
		}
		return page(5), nil
	}
	st := waitResolved(t, Watch(ctx, c, vacKey, load))
	if st.Err != nil {
		t.Errorf("load should not see caller cancel, got %v", st.Err)
	}
}

func TestHandle_OnChangeAndClose(t *testing.T) {
	c := newTestCache()
	gate := make(chan struct{})
	var calls atomic.Int32
	load := gatedLoader(&calls, gate, page(8))

	h := Watch(context.Background(), c, vacKey, load)
	closed := Watch(context.Background(), c, vacKey, load)

	got := make(chan State[int], 2)
	h.OnChange(func(st State[int]) { got <- st })
	closed.OnChange(func(st State[int]) { t.Error("callback ran on closed handle") })
	closed.Close()

	close(gate)
	select {
	case st := <-got:
		if st.Data == nil || st.Data.TotalCount != 8 {
			t.Errorf("callback state %+v", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
	waitResolved(t, closed)

	late := make(chan State[int], 1)
	h.OnChange(func(st State[int]) { late <- st })
	select {
	case <-late:
	default:
		t.Error("OnChange after resolve should run immediately")
	}
}

func TestHandle_WaitHonoursContext(t *testing.T) {
	c := newTestCache()
	gate := make(chan struct{})
	defer close(gate)
	var calls atomic.Int32
	h := Watch(context.Background(), c, vacKey, gatedLoader(&calls, gate, page(1)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	st, err := h.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() err = %v, want deadline exceeded", err)
	}
	if !st.IsLoading {
		t.Errorf("expected loading state, got %+v", st)
	}
}

func TestNew_LoadTimeout(t *testing.T) {
	c := New(Options{Size: 4, LoadTimeout: 10 * time.Millisecond}, zap.NewNop())
	load := func(ctx context.Context) (models.Paginated[int], error) {
		<-ctx.Done()
		return models.Paginated[int]{}, ctx.Err()
	}
	st := waitResolved(t, Watch(context.Background(), c, vacKey, load))
	if !errors.Is(st.Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %+v", st)
	}
}
