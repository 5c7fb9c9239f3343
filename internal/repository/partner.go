package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
)

const partnerColumns = `id, name, status, current_order_id, delivery_end_time, created_at`

// PartnerRepo is the postgres partner registry.
type PartnerRepo struct{ db *pgxpool.Pool }

// NewPartnerRepo creates a new PartnerRepo.
func NewPartnerRepo(db *pgxpool.Pool) *PartnerRepo { return &PartnerRepo{db: db} }

// Create inserts an idle partner.
func (r *PartnerRepo) Create(ctx context.Context, p *domain.Partner) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO partners(id, name, status) VALUES($1, $2, 'idle') RETURNING created_at`,
		p.ID, p.Name,
	).Scan(&p.CreatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return unavailable("create partner", err)
	}
	p.Status = domain.PartnerIdle
	return nil
}

// Get returns the partner or nil when it does not exist.
func (r *PartnerRepo) Get(ctx context.Context, id string) (*domain.Partner, error) {
	p, err := scanPartner(r.db.QueryRow(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, unavailable(fmt.Sprintf("get partner %s", id), err)
	}
	return p, nil
}

// List returns all partners in registration order.
func (r *PartnerRepo) List(ctx context.Context) ([]domain.Partner, error) {
	return r.list(ctx, `SELECT `+partnerColumns+` FROM partners ORDER BY seq`)
}

// ListIdle returns idle partners in registration order.
func (r *PartnerRepo) ListIdle(ctx context.Context) ([]domain.Partner, error) {
	return r.list(ctx, `SELECT `+partnerColumns+` FROM partners WHERE status='idle' ORDER BY seq`)
}

// ListBusy returns busy partners in registration order.
func (r *PartnerRepo) ListBusy(ctx context.Context) ([]domain.Partner, error) {
	return r.list(ctx, `SELECT `+partnerColumns+` FROM partners WHERE status='busy' ORDER BY seq`)
}

// MarkBusy binds the partner to the order only while it is still idle.
func (r *PartnerRepo) MarkBusy(ctx context.Context, partnerID, orderID string, deadline time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE partners
		SET status = 'busy', current_order_id = $2, delivery_end_time = $3, updated_at = now()
		WHERE id = $1 AND status = 'idle'
	`, partnerID, orderID, deadline)
	if err != nil {
		return false, unavailable(fmt.Sprintf("mark partner %s busy", partnerID), err)
	}
	return ct.RowsAffected() > 0, nil
}

// Release frees the partner only while it is still busy with orderID.
// Status, order and deadline are cleared by the same statement.
func (r *PartnerRepo) Release(ctx context.Context, partnerID, orderID string) (bool, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE partners
		SET status = 'idle', current_order_id = NULL, delivery_end_time = NULL, updated_at = now()
		WHERE id = $1 AND status = 'busy' AND current_order_id = $2
	`, partnerID, orderID)
	if err != nil {
		return false, unavailable(fmt.Sprintf("release partner %s", partnerID), err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PartnerRepo) list(ctx context.Context, q string) ([]domain.Partner, error) {
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, unavailable("list partners", err)
	}
	defer rows.Close()

	out := make([]domain.Partner, 0)
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, unavailable("scan partner", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list partners", err)
	}
	return out, nil
}

func scanPartner(row pgx.Row) (*domain.Partner, error) {
	var (
		p       domain.Partner
		orderID *string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Status, &orderID, &p.DeliveryEndTime, &p.CreatedAt); err != nil {
		return nil, err
	}
	if orderID != nil {
		p.CurrentOrderID = *orderID
	}
	return &p, nil
}
