package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
)

// Orders is an in-memory order store.
type Orders struct {
	mu   sync.RWMutex
	byID map[string]*storedOrder
	seq  int64
	now  func() time.Time
}

type storedOrder struct {
	seq   int64
	order domain.Order
}

// NewOrders creates an empty store.
func NewOrders() *Orders {
	return &Orders{byID: make(map[string]*storedOrder), now: time.Now}
}

// Create inserts a new order.
func (s *Orders) Create(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[o.ID]; ok {
		return apperr.ErrConflict
	}
	now := s.now()
	o.CreatedAt, o.UpdatedAt = now, now
	s.seq++
	s.byID[o.ID] = &storedOrder{seq: s.seq, order: cloneOrder(o)}
	return nil
}

// Get returns a copy of the order or nil.
func (s *Orders) Get(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	so, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := cloneOrder(&so.order)
	return &cp, nil
}

// ListByRestaurant returns the restaurant's orders, newest first.
func (s *Orders) ListByRestaurant(_ context.Context, restaurantID string) ([]domain.Order, error) {
	return s.filter(func(o *domain.Order) bool { return o.RestaurantID == restaurantID }), nil
}

// ListByCustomer returns the customer's orders, newest first.
func (s *Orders) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	return s.filter(func(o *domain.Order) bool { return o.CustomerID == customerID }), nil
}

// ListByPartner returns orders bound to the partner, optionally filtered by status.
func (s *Orders) ListByPartner(_ context.Context, partnerID string, status domain.OrderStatus) ([]domain.Order, error) {
	return s.filter(func(o *domain.Order) bool {
		return o.DeliveryPartnerID == partnerID && (status == "" || o.Status == status)
	}), nil
}

// TransitionStatus moves the order from c.From to c.To only while it is still in c.From.
func (s *Orders) TransitionStatus(_ context.Context, c domain.StatusChange) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	so, ok := s.byID[c.OrderID]
	if !ok || so.order.Status != c.From {
		return false, nil
	}
	o := &so.order
	o.Status = c.To
	if c.Reason != "" {
		o.Reason = c.Reason
	}
	if c.DeliveredAt != nil {
		t := *c.DeliveredAt
		o.DeliveredAt = &t
	}
	o.UpdatedAt = s.now()
	return true, nil
}

// SetAssignment writes the delivery fields once, while the order is ready and unassigned.
func (s *Orders) SetAssignment(_ context.Context, orderID string, a domain.Assignment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	so, ok := s.byID[orderID]
	if !ok || so.order.Status != domain.OrderReady || so.order.HasPartner() {
		return false, nil
	}
	o := &so.order
	start, end := a.StartTime, a.EndTime
	o.DeliveryPartnerID = a.PartnerID
	o.DeliveryPartnerName = a.PartnerName
	o.ETAMinutes = a.ETAMinutes
	o.DeliveryStatus = domain.DeliveryAssigned
	o.DeliveryStartTime = &start
	o.DeliveryEndTime = &end
	o.UpdatedAt = s.now()
	return true, nil
}

// MarkDelivered records the delivery on an order bound to u.PartnerID.
// A final update instead moves any ready order to delivered.
func (s *Orders) MarkDelivered(_ context.Context, u domain.DeliveredUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	so, ok := s.byID[u.OrderID]
	if !ok {
		return false, nil
	}
	o := &so.order
	if u.Final {
		if o.Status != domain.OrderReady {
			return false, nil
		}
		at := u.At
		o.Status = domain.OrderDelivered
		o.DeliveredAt = &at
	} else if o.DeliveryPartnerID != u.PartnerID || o.DeliveryStatus == domain.DeliveryDelivered {
		return false, nil
	}
	o.DeliveryStatus = domain.DeliveryDelivered
	o.UpdatedAt = s.now()
	return true, nil
}

func (s *Orders) filter(keep func(*domain.Order) bool) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*storedOrder, 0)
	for _, so := range s.byID {
		if keep(&so.order) {
			matched = append(matched, so)
		}
	}
	slices.SortFunc(matched, func(a, b *storedOrder) int {
		if c := b.order.CreatedAt.Compare(a.order.CreatedAt); c != 0 {
			return c
		}
		return int(b.seq - a.seq)
	})

	out := make([]domain.Order, 0, len(matched))
	for _, so := range matched {
		out = append(out, cloneOrder(&so.order))
	}
	return out
}

func cloneOrder(o *domain.Order) domain.Order {
	cp := *o
	cp.Items = slices.Clone(o.Items)
	cp.DeliveryStartTime = cloneTime(o.DeliveryStartTime)
	cp.DeliveryEndTime = cloneTime(o.DeliveryEndTime)
	cp.DeliveredAt = cloneTime(o.DeliveredAt)
	return cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
