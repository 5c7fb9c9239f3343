package app

import (
	"context"
	"errors"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/service/orders"
	"food-dispatch/internal/transport/kafka"
)

type eventHandler interface {
	Handle(ctx context.Context, e orders.Event) error
}

// makeOrdersKafka adapts the lifecycle processor to the consumer. Errors a
// redelivery cannot fix are marked permanent so the message is skipped.
func makeOrdersKafka(h eventHandler) kafka.HandleFunc {
	return func(ctx context.Context, event orders.Event) error {
		err := h.Handle(ctx, event)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return kafka.Permanent(err)
		}
		return err
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, apperr.ErrInvalid) ||
		errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrInvalidTransition) ||
		errors.Is(err, apperr.ErrConflict) ||
		errors.Is(err, apperr.ErrAssignmentPartialFailure)
}
