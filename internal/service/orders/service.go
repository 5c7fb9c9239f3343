package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
)

// PlaceRequest is the input of Place.
type PlaceRequest struct {
	RestaurantID string
	CustomerID   string
	Items        []domain.LineItem
}

// UpdateResult describes an applied status change.
// Assignment is set when the ready edge found a partner.
type UpdateResult struct {
	OrderID    string
	From       domain.OrderStatus
	To         domain.OrderStatus
	Assignment *domain.AssignResult
}

// Service runs the order lifecycle and triggers dispatch on the ready edge.
type Service struct {
	repo             OrderRepository
	delivery         DeliveryPort
	notifier         Notifier
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
	newID            func() string
}

// NewService creates a new orders Service.
func NewService(repo OrderRepository, delivery DeliveryPort, notifier Notifier, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             repo,
		delivery:         delivery,
		notifier:         notifier,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Place creates a pending order and publishes an order-placed notification.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*domain.Order, error) {
	if err := validatePlace(req); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o := &domain.Order{
		ID:           s.newID(),
		RestaurantID: strings.TrimSpace(req.RestaurantID),
		CustomerID:   strings.TrimSpace(req.CustomerID),
		Items:        req.Items,
		Status:       domain.OrderPending,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	if err := s.notifier.OrderPlaced(ctx, *o); err != nil {
		s.logger.Warn("order placed notification failed",
			logx.String("order_id", o.ID),
			logx.Err(err),
		)
	}

	s.logger.Info("order placed",
		logx.String("event", "order_placed"),
		logx.String("order_id", o.ID),
		logx.String("restaurant_id", o.RestaurantID),
		logx.Int("items", len(o.Items)),
	)
	return o, nil
}

// Get returns the order or apperr.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	id, err := requireID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

// ListByRestaurant returns the restaurant's orders, newest first.
func (s *Service) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	restaurantID, err := requireID(restaurantID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListByRestaurant(ctx, restaurantID)
}

// ListByCustomer returns the customer's order history, newest first.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	customerID, err := requireID(customerID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListByCustomer(ctx, customerID)
}

// ListByPartner returns orders delivered or being delivered by the partner.
// An empty status returns all of them.
func (s *Service) ListByPartner(ctx context.Context, partnerID string, status domain.OrderStatus) ([]domain.Order, error) {
	partnerID, err := requireID(partnerID)
	if err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListByPartner(ctx, partnerID, status)
}

// UpdateStatus applies a lifecycle transition requested by actor.
// Moving to ready runs the assignment; finding no idle partner is not an error
// and leaves the order ready without delivery fields.
func (s *Service) UpdateStatus(ctx context.Context, id string, to domain.OrderStatus, actor domain.Actor) (UpdateResult, error) {
	id, err := requireID(id)
	if err != nil {
		return UpdateResult{}, err
	}
	if !to.Valid() {
		return UpdateResult{}, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, to)
	}

	o, err := s.Get(ctx, id)
	if err != nil {
		return UpdateResult{}, err
	}
	if err := domain.CanTransition(o.Status, to, actor); err != nil {
		return UpdateResult{}, err
	}

	if to == domain.OrderDelivered {
		return s.deliver(ctx, o)
	}

	change := domain.StatusChange{OrderID: id, From: o.Status, To: to}
	if to == domain.OrderRejected {
		change.Reason = domain.RejectionReason
	}
	if err := s.transition(ctx, change); err != nil {
		return UpdateResult{}, err
	}

	res := UpdateResult{OrderID: id, From: o.Status, To: to}
	s.logger.Info("order status updated",
		logx.String("event", "order_status_updated"),
		logx.String("order_id", id),
		logx.String("from", string(o.Status)),
		logx.String("to", string(to)),
		logx.String("actor", string(actor)),
	)

	if to != domain.OrderReady {
		return res, nil
	}

	assignment, err := s.delivery.Assign(ctx, id)
	switch {
	case err == nil:
		res.Assignment = &assignment
	case errors.Is(err, apperr.ErrNoPartnerAvailable):
		s.logger.Warn("order ready without delivery partner",
			logx.String("order_id", id),
		)
	default:
		return res, err
	}
	return res, nil
}

// Cancel is the customer's cancellation; it is only allowed while pending.
func (s *Service) Cancel(ctx context.Context, id string) (UpdateResult, error) {
	return s.UpdateStatus(ctx, id, domain.OrderCancelled, domain.ActorCustomer)
}

// UpdateDeliveryStatus is the delivery partner's manual update. Only delivered is accepted.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, id, status string) (UpdateResult, error) {
	if strings.ToLower(strings.TrimSpace(status)) != string(domain.DeliveryDelivered) {
		return UpdateResult{}, fmt.Errorf("%w: unsupported delivery status %q", apperr.ErrInvalid, status)
	}
	return s.UpdateStatus(ctx, id, domain.OrderDelivered, domain.ActorDelivery)
}

// Reassign retries the assignment of a ready order that has no partner.
func (s *Service) Reassign(ctx context.Context, id string) (domain.AssignResult, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return domain.AssignResult{}, err
	}
	if o.Status != domain.OrderReady || o.HasPartner() {
		return domain.AssignResult{}, fmt.Errorf("%w: order %s is %s with partner %q", apperr.ErrConflict, o.ID, o.Status, o.DeliveryPartnerID)
	}
	return s.delivery.Assign(ctx, o.ID)
}

// deliver finishes a ready order on the manual path. A bound partner is
// completed through dispatch; if the automatic path got there first, or there
// is no partner, only the lifecycle transition is applied.
func (s *Service) deliver(ctx context.Context, o *domain.Order) (UpdateResult, error) {
	res := UpdateResult{OrderID: o.ID, From: o.Status, To: domain.OrderDelivered}

	if o.HasPartner() {
		out, err := s.delivery.Complete(ctx, o.ID, o.DeliveryPartnerID, domain.TriggerManual)
		if err != nil {
			return UpdateResult{}, err
		}
		if out.Outcome == domain.Completed {
			s.logger.Info("order delivered", logx.String("order_id", o.ID), logx.String("partner_id", o.DeliveryPartnerID))
			return res, nil
		}
	}

	at := s.now()
	err := s.transition(ctx, domain.StatusChange{
		OrderID:     o.ID,
		From:        domain.OrderReady,
		To:          domain.OrderDelivered,
		DeliveredAt: &at,
	})
	if errors.Is(err, apperr.ErrConflict) && s.delivered(ctx, o.ID) {
		s.logger.Info("order already delivered by a concurrent completion", logx.String("order_id", o.ID))
		return res, nil
	}
	if err != nil {
		return UpdateResult{}, err
	}
	s.logger.Info("order delivered", logx.String("order_id", o.ID))
	return res, nil
}

// delivered reports whether the order has reached delivered. A manual
// completion that loses the partner release still writes the final status,
// so a conflicting transition may already be satisfied.
func (s *Service) delivered(ctx context.Context, id string) bool {
	cur, err := s.Get(ctx, id)
	return err == nil && cur.Status == domain.OrderDelivered
}

func (s *Service) transition(ctx context.Context, c domain.StatusChange) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.repo.TransitionStatus(ctx, c)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: order %s is no longer %s", apperr.ErrConflict, c.OrderID, c.From)
	}
	return nil
}

func validatePlace(req PlaceRequest) error {
	if strings.TrimSpace(req.RestaurantID) == "" || strings.TrimSpace(req.CustomerID) == "" {
		return fmt.Errorf("%w: restaurant_id and customer_id are required", apperr.ErrInvalid)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order has no items", apperr.ErrInvalid)
	}
	for _, it := range req.Items {
		if strings.TrimSpace(it.MenuID) == "" || it.Quantity <= 0 {
			return fmt.Errorf("%w: item needs menu_id and a positive quantity", apperr.ErrInvalid)
		}
	}
	return nil
}

func requireID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", apperr.ErrInvalid
	}
	return id, nil
}
