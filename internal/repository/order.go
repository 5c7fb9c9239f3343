package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"food-dispatch/internal/apperr"
	"food-dispatch/internal/domain"
)

const orderColumns = `id, restaurant_id, customer_id, items, status, reason,
	delivery_partner_id, delivery_partner_name, eta_minutes, delivery_status,
	delivery_start_time, delivery_end_time, delivered_at, created_at, updated_at`

// OrderRepo is the postgres order store.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

// Create inserts a new order.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO orders(id, restaurant_id, customer_id, items, status)
		VALUES($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, o.ID, o.RestaurantID, o.CustomerID, items, o.Status).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return unavailable("create order", err)
	}
	return nil
}

// Get returns the order or nil when it does not exist.
func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, unavailable(fmt.Sprintf("get order %s", id), err)
	}
	return o, nil
}

// ListByRestaurant returns the restaurant's orders, newest first.
func (r *OrderRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE restaurant_id=$1 ORDER BY created_at DESC, id`,
		restaurantID)
}

// ListByCustomer returns the customer's orders, newest first.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC, id`,
		customerID)
}

// ListByPartner returns orders bound to the partner, optionally filtered by status.
func (r *OrderRepo) ListByPartner(ctx context.Context, partnerID string, status domain.OrderStatus) ([]domain.Order, error) {
	if status == "" {
		return r.list(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE delivery_partner_id=$1 ORDER BY created_at DESC, id`,
			partnerID)
	}
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE delivery_partner_id=$1 AND status=$2 ORDER BY created_at DESC, id`,
		partnerID, status)
}

// TransitionStatus moves the order from c.From to c.To only while it is still in c.From.
func (r *OrderRepo) TransitionStatus(ctx context.Context, c domain.StatusChange) (bool, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status       = $3,
		    reason       = CASE WHEN $4::text = '' THEN reason ELSE $4::text END,
		    delivered_at = COALESCE($5, delivered_at),
		    updated_at   = now()
		WHERE id = $1 AND status = $2
	`, c.OrderID, c.From, c.To, c.Reason, c.DeliveredAt)
	if err != nil {
		return false, unavailable(fmt.Sprintf("transition order %s", c.OrderID), err)
	}
	return ct.RowsAffected() > 0, nil
}

// SetAssignment writes the delivery fields once, while the order is ready and unassigned.
func (r *OrderRepo) SetAssignment(ctx context.Context, orderID string, a domain.Assignment) (bool, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE orders
		SET delivery_partner_id   = $2,
		    delivery_partner_name = $3,
		    eta_minutes           = $4,
		    delivery_status       = 'assigned',
		    delivery_start_time   = $5,
		    delivery_end_time     = $6,
		    updated_at            = now()
		WHERE id = $1 AND status = 'ready' AND delivery_partner_id IS NULL
	`, orderID, a.PartnerID, a.PartnerName, a.ETAMinutes, a.StartTime, a.EndTime)
	if err != nil {
		return false, unavailable(fmt.Sprintf("assign order %s", orderID), err)
	}
	return ct.RowsAffected() > 0, nil
}

// MarkDelivered records the delivery on an order bound to u.PartnerID.
// A final update instead moves any ready order to delivered.
func (r *OrderRepo) MarkDelivered(ctx context.Context, u domain.DeliveredUpdate) (bool, error) {
	var (
		q    string
		args []any
	)
	if u.Final {
		q = `
		UPDATE orders
		SET delivery_status = 'delivered', status = 'delivered', delivered_at = $2, updated_at = now()
		WHERE id = $1 AND status = 'ready'`
		args = []any{u.OrderID, u.At}
	} else {
		q = `
		UPDATE orders
		SET delivery_status = 'delivered', updated_at = now()
		WHERE id = $1 AND delivery_partner_id = $2 AND delivery_status <> 'delivered'`
		args = []any{u.OrderID, u.PartnerID}
	}
	ct, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return false, unavailable(fmt.Sprintf("mark order %s delivered", u.OrderID), err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *OrderRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, unavailable("list orders", err)
	}
	defer rows.Close()

	out := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, unavailable("scan order", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list orders", err)
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o         domain.Order
		items     []byte
		partnerID *string
	)
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.CustomerID, &items, &o.Status, &o.Reason,
		&partnerID, &o.DeliveryPartnerName, &o.ETAMinutes, &o.DeliveryStatus,
		&o.DeliveryStartTime, &o.DeliveryEndTime, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if partnerID != nil {
		o.DeliveryPartnerID = *partnerID
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}
	return &o, nil
}
