package dispatch_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
	"food-dispatch/internal/repository/memory"
	"food-dispatch/internal/service/dispatch"
	testlog "food-dispatch/internal/testutil"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: t0} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeScheduler never fires on its own; tests call Fire.
type fakeScheduler struct {
	mu    sync.Mutex
	fns   map[string]func()
	after map[string]time.Duration
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{fns: map[string]func(){}, after: map[string]time.Duration{}}
}

func (f *fakeScheduler) Schedule(key string, after time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fns[key] = fn
	f.after[key] = after
}

func (f *fakeScheduler) Cancel(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.fns[key]
	delete(f.fns, key)
	return ok
}

func (f *fakeScheduler) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fns)
}

func (f *fakeScheduler) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.fns[key]
	return ok
}

func (f *fakeScheduler) After(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.after[key]
}

// Fire runs the callback for key the way a real timer would: the entry is removed first.
func (f *fakeScheduler) Fire(key string) bool {
	f.mu.Lock()
	fn, ok := f.fns[key]
	delete(f.fns, key)
	f.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

// flakyOrders fails selected writes.
type flakyOrders struct {
	*memory.Orders
	mu      sync.Mutex
	markErr error
	setErr  error
}

func (f *flakyOrders) fail(mark, set error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markErr, f.setErr = mark, set
}

func (f *flakyOrders) MarkDelivered(ctx context.Context, u domain.DeliveredUpdate) (bool, error) {
	f.mu.Lock()
	err := f.markErr
	f.mu.Unlock()
	if err != nil {
		return false, err
	}
	return f.Orders.MarkDelivered(ctx, u)
}

func (f *flakyOrders) SetAssignment(ctx context.Context, id string, a domain.Assignment) (bool, error) {
	f.mu.Lock()
	err := f.setErr
	f.mu.Unlock()
	if err != nil {
		return false, err
	}
	return f.Orders.SetAssignment(ctx, id, a)
}

type fixture struct {
	partners *memory.Partners
	orders   *flakyOrders
	timers   *fakeScheduler
	clock    *clock
	logs     *testlog.Recorder
	engine   *dispatch.Engine
	sweeper  *dispatch.Sweeper
}

func newFixture(t *testing.T, partnerNames ...string) *fixture {
	t.Helper()
	f := &fixture{
		partners: memory.NewPartners(),
		orders:   &flakyOrders{Orders: memory.NewOrders()},
		timers:   newFakeScheduler(),
		clock:    newClock(),
		logs:     testlog.New(),
	}
	var logger logx.Logger = f.logs.Logger()
	f.engine = dispatch.NewEngine(f.partners, f.orders, f.timers, time.Second, logger,
		dispatch.WithClock(f.clock.Now),
		dispatch.WithETA(dispatch.FixedETA(5)),
	)
	f.sweeper = dispatch.NewSweeper(f.partners, f.engine, 4, time.Second, logger,
		dispatch.WithSweepClock(f.clock.Now),
	)
	for i, n := range partnerNames {
		require.NoError(t, f.partners.Create(context.Background(), &domain.Partner{ID: fmt.Sprintf("p%d", i+1), Name: n}))
	}
	return f
}

func (f *fixture) readyOrder(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.orders.Create(context.Background(), &domain.Order{
		ID: id, RestaurantID: "r1", CustomerID: "c1", Status: domain.OrderReady,
	}))
}

func (f *fixture) partner(t *testing.T, id string) *domain.Partner {
	t.Helper()
	p, err := f.partners.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.True(t, p.Consistent(), "partner %s violates busy/order/deadline invariant", id)
	return p
}

func (f *fixture) order(t *testing.T, id string) *domain.Order {
	t.Helper()
	o, err := f.orders.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, o)
	return o
}
