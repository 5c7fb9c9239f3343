// Package memory holds in-process stores with the same conditional-update
// semantics as the postgres repositories.
package memory

import (
	"context"
	"sync"
	"time"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
)

// Partners is an in-memory partner registry.
type Partners struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Partner
	order []string
	now   func() time.Time
}

// NewPartners creates an empty registry.
func NewPartners() *Partners {
	return &Partners{byID: make(map[string]*domain.Partner), now: time.Now}
}

// Create registers an idle partner. Names are unique.
func (s *Partners) Create(_ context.Context, p *domain.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; ok {
		return apperr.ErrConflict
	}
	for _, existing := range s.byID {
		if existing.Name == p.Name {
			return apperr.ErrConflict
		}
	}
	p.Status = domain.PartnerIdle
	p.CurrentOrderID = ""
	p.DeliveryEndTime = nil
	p.CreatedAt = s.now()

	cp := clonePartner(p)
	s.byID[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

// Get returns a copy of the partner or nil.
func (s *Partners) Get(_ context.Context, id string) (*domain.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := clonePartner(p)
	return &cp, nil
}

// List returns all partners in registration order.
func (s *Partners) List(_ context.Context) ([]domain.Partner, error) {
	return s.filter(func(*domain.Partner) bool { return true }), nil
}

// ListIdle returns idle partners in registration order.
func (s *Partners) ListIdle(_ context.Context) ([]domain.Partner, error) {
	return s.filter(func(p *domain.Partner) bool { return p.Status == domain.PartnerIdle }), nil
}

// ListBusy returns busy partners in registration order.
func (s *Partners) ListBusy(_ context.Context) ([]domain.Partner, error) {
	return s.filter(func(p *domain.Partner) bool { return p.Status == domain.PartnerBusy }), nil
}

// MarkBusy binds the partner to the order only while it is idle.
func (s *Partners) MarkBusy(_ context.Context, partnerID, orderID string, deadline time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[partnerID]
	if !ok || p.Status != domain.PartnerIdle {
		return false, nil
	}
	d := deadline
	p.Status = domain.PartnerBusy
	p.CurrentOrderID = orderID
	p.DeliveryEndTime = &d
	return true, nil
}

// Release frees the partner only while it is busy with orderID.
func (s *Partners) Release(_ context.Context, partnerID, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[partnerID]
	if !ok || p.Status != domain.PartnerBusy || p.CurrentOrderID != orderID {
		return false, nil
	}
	p.Status = domain.PartnerIdle
	p.CurrentOrderID = ""
	p.DeliveryEndTime = nil
	return true, nil
}

func (s *Partners) filter(keep func(*domain.Partner) bool) []domain.Partner {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Partner, 0, len(s.order))
	for _, id := range s.order {
		if p := s.byID[id]; keep(p) {
			out = append(out, clonePartner(p))
		}
	}
	return out
}

func clonePartner(p *domain.Partner) domain.Partner {
	cp := *p
	if p.DeliveryEndTime != nil {
		t := *p.DeliveryEndTime
		cp.DeliveryEndTime = &t
	}
	return cp
}
