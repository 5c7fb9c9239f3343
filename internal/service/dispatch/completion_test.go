package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
)

func assigned(t *testing.T, f *fixture, orderID string) domain.AssignResult {
	t.Helper()
	f.readyOrder(t, orderID)
	res, err := f.engine.Assign(context.Background(), orderID)
	require.NoError(t, err)
	return res
}

func TestComplete_TimerFires(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "bob")
	assigned(t, f, "o1")

	f.clock.Advance(5 * time.Minute)
	require.True(t, f.timers.Fire("o1"))

	p := f.partner(t, "p1")
	require.Equal(t, domain.PartnerIdle, p.Status)
	require.Empty(t, p.CurrentOrderID)
	require.Nil(t, p.DeliveryEndTime)

	o := f.order(t, "o1")
	require.Equal(t, domain.DeliveryDelivered, o.DeliveryStatus)
	require.Equal(t, domain.OrderReady, o.Status, "automatic completion leaves the lifecycle status alone")
	require.Nil(t, o.DeliveredAt)
	require.True(t, f.logs.Has("info", "delivery completed"))
}

func TestComplete_IdempotentSequential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "bob")
	assigned(t, f, "o1")

	first, err := f.engine.Complete(ctx, "o1", "p1", domain.TriggerTimer)
	require.NoError(t, err)
	require.Equal(t, domain.Completed, first.Outcome)

	before := f.order(t, "o1")

	for _, trig := range []domain.Trigger{domain.TriggerTimer, domain.TriggerSweep, domain.TriggerManual} {
		again, err := f.engine.Complete(ctx, "o1", "p1", trig)
		require.NoError(t, err)
		require.Equal(t, domain.AlreadyCompleted, again.Outcome)
	}

	after := f.order(t, "o1")
	require.Equal(t, before.UpdatedAt, after.UpdatedAt, "no writes after the first completion")
	require.Equal(t, before.Status, after.Status)
	require.Equal(t, domain.PartnerIdle, f.partner(t, "p1").Status)
}

func TestComplete_ConcurrentTriggersCompleteOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "bob")
	assigned(t, f, "o1")

	const n = 32
	outcomes := make([]domain.CompletionOutcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			trig := domain.TriggerTimer
			if i%2 == 1 {
				trig = domain.TriggerSweep
			}
			res, err := f.engine.Complete(ctx, "o1", "p1", trig)
			require.NoError(t, err)
			outcomes[i] = res.Outcome
		}(i)
	}
	wg.Wait()

	completed := 0
	for _, o := range outcomes {
		if o == domain.Completed {
			completed++
		}
	}
	require.Equal(t, 1, completed)
	require.Equal(t, domain.PartnerIdle, f.partner(t, "p1").Status)
	require.Equal(t, domain.DeliveryDelivered, f.order(t, "o1").DeliveryStatus)
}

func TestComplete_ManualMovesOrderToDelivered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "bob")
	assigned(t, f, "o1")

	f.clock.Advance(2 * time.Minute)
	res, err := f.engine.Complete(ctx, "o1", "p1", domain.TriggerManual)
	require.NoError(t, err)
	require.Equal(t, domain.Completed, res.Outcome)

	o := f.order(t, "o1")
	require.Equal(t, domain.OrderDelivered, o.Status)
	require.Equal(t, domain.DeliveryDelivered, o.DeliveryStatus)
	require.Equal(t, t0.Add(2*time.Minute), *o.DeliveredAt)
	require.False(t, f.timers.Has("o1"), "pending timer is cancelled")

	require.False(t, f.timers.Fire("o1"))
}

func TestComplete_PartnerOnAnotherOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "bob")
	assigned(t, f, "o1")
	_, err := f.engine.Complete(ctx, "o1", "p1", domain.TriggerTimer)
	require.NoError(t, err)
	assigned(t, f, "o2")

	res, err := f.engine.Complete(ctx, "o1", "p1", domain.TriggerSweep)
	require.NoError(t, err)
	require.Equal(t, domain.AlreadyCompleted, res.Outcome)
	require.True(t, f.partner(t, "p1").Delivering("o2"), "stale completion must not free the partner")
}

func TestComplete_UnknownPartner(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	res, err := f.engine.Complete(context.Background(), "o1", "ghost", domain.TriggerTimer)
	require.NoError(t, err)
	require.Equal(t, domain.AlreadyCompleted, res.Outcome)
}

func TestComplete_InvalidArguments(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.engine.Complete(context.Background(), "", "p1", domain.TriggerTimer)
	require.ErrorIs(t, err, apperr.ErrInvalid)
	_, err = f.engine.Complete(context.Background(), "o1", " ", domain.TriggerTimer)
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestComplete_StoreErrorLeavesPartnerBusyForRetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "bob")
	assigned(t, f, "o1")

	f.orders.fail(errors.New("timeout"), nil)
	f.clock.Advance(5 * time.Minute)
	f.timers.Fire("o1")

	require.True(t, f.partner(t, "p1").Delivering("o1"))
	require.True(t, f.logs.Has("warn", "timer completion failed, sweeper will retry"))

	_, err := f.engine.Complete(ctx, "o1", "p1", domain.TriggerSweep)
	require.ErrorIs(t, err, apperr.ErrStoreUnavailable)

	f.orders.fail(nil, nil)
	res, err := f.sweeper.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Completed)
	require.Equal(t, domain.PartnerIdle, f.partner(t, "p1").Status)
	require.Equal(t, domain.DeliveryDelivered, f.order(t, "o1").DeliveryStatus)
}
