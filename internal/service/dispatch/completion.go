package dispatch

import (
	"context"
	"strings"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
)

// Complete converges the order to delivered and the partner to idle.
// It is safe to call any number of times from any trigger: only the caller
// whose conditional release applies reports domain.Completed, every other
// caller gets domain.AlreadyCompleted. Store failures leave the partner busy
// so the next sweep retries.
func (e *Engine) Complete(ctx context.Context, orderID, partnerID string, trigger domain.Trigger) (domain.CompletionResult, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return domain.CompletionResult{}, err
	}
	partnerID = strings.TrimSpace(partnerID)
	if partnerID == "" {
		return domain.CompletionResult{}, apperr.ErrInvalid
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	result := domain.CompletionResult{OrderID: orderID, PartnerID: partnerID, Trigger: trigger}

	partner, err := e.partners.Get(ctx, partnerID)
	if err != nil {
		e.metrics.CompletionFailed(trigger)
		return result, storeErr("get partner", err)
	}
	if partner == nil || !partner.Delivering(orderID) {
		return e.already(result), nil
	}

	if _, err := e.orders.MarkDelivered(ctx, domain.DeliveredUpdate{
		OrderID:   orderID,
		PartnerID: partnerID,
		Final:     trigger == domain.TriggerManual,
		At:        e.now(),
	}); err != nil {
		e.metrics.CompletionFailed(trigger)
		return result, storeErr("mark order delivered", err)
	}

	released, err := e.partners.Release(ctx, partnerID, orderID)
	if err != nil {
		e.metrics.CompletionFailed(trigger)
		return result, storeErr("release partner", err)
	}
	if !released {
		return e.already(result), nil
	}

	e.timers.Cancel(orderID)
	e.metrics.TimersPending(e.timers.Pending())

	result.Outcome = domain.Completed
	e.metrics.Completion(trigger, result.Outcome)
	e.logger.Info("delivery completed",
		logx.String("event", "delivery_completed"),
		logx.String("order_id", orderID),
		logx.String("partner_id", partnerID),
		logx.String("trigger", string(trigger)),
	)
	return result, nil
}

func (e *Engine) already(result domain.CompletionResult) domain.CompletionResult {
	result.Outcome = domain.AlreadyCompleted
	e.metrics.Completion(result.Trigger, result.Outcome)
	e.logger.Debug("delivery already completed",
		logx.String("order_id", result.OrderID),
		logx.String("partner_id", result.PartnerID),
		logx.String("trigger", string(result.Trigger)),
	)
	return result
}
