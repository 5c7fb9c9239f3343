package partners

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
	"food-dispatch/internal/logx"
)

type partnerRepository interface {
	Create(ctx context.Context, p *domain.Partner) error
	Get(ctx context.Context, id string) (*domain.Partner, error)
	List(ctx context.Context) ([]domain.Partner, error)
}

// Service manages the delivery partner registry outside of dispatch.
type Service struct {
	repo             partnerRepository
	operationTimeout time.Duration
	logger           logx.Logger
	newID            func() string
}

// NewService creates a new partners Service.
func NewService(repo partnerRepository, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: repo, operationTimeout: timeout, logger: logger, newID: uuid.NewString}
}

// Register adds an idle partner. Names are unique.
func (s *Service) Register(ctx context.Context, name string) (*domain.Partner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalid)
	}
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	p := &domain.Partner{ID: s.newID(), Name: name}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("partner registered", logx.String("partner_id", p.ID), logx.String("name", p.Name))
	return p, nil
}

// Get returns the partner or apperr.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.Partner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

// List returns all partners in registration order.
func (s *Service) List(ctx context.Context) ([]domain.Partner, error) {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()
	return s.repo.List(ctx)
}
