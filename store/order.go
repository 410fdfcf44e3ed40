package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"avado-backend/models"
)

// OrderStore persists orders. The item and customer documents are stored as
// JSONB snapshots frozen at checkout time.
type OrderStore struct {
	DB *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{DB: db}
}

const orderColumns = `id, user_id, session_id, items, total, customer,
	payment_method, COALESCE(payment_ref,''), status, COALESCE(tracking_id,''), created_at`

// InsertTx writes the order row inside the checkout transaction and returns
// it with the generated id and timestamp.
func InsertTx(ctx context.Context, q Querier, o models.Order) (models.Order, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return models.Order{}, err
	}
	customerJSON, err := json.Marshal(o.Customer)
	if err != nil {
		return models.Order{}, err
	}

	err = q.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, session_id, items, total, customer, payment_method, payment_ref, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,now())
		RETURNING id, created_at`,
		o.UserID, o.SessionID, itemsJSON, o.Total, customerJSON,
		o.PaymentMethod, o.PaymentRef, o.Status).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return models.Order{}, err
	}
	return o, nil
}

// ListByUser returns a user's orders, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListAll returns every order for the admin dashboard, newest first.
func (s *OrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// Get loads one order by id.
func (s *OrderStore) Get(ctx context.Context, id int64) (models.Order, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	return o, err
}

// UpdateStatus moves an order from one status to another. The expected
// current status goes into the WHERE clause so two concurrent writers cannot
// both apply a transition out of the same state; losing the race surfaces as
// ErrConflict, a vanished row as ErrNotFound.
func (s *OrderStore) UpdateStatus(ctx context.Context, id int64, from, to string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE orders SET status=$1, updated_at=now() WHERE id=$2 AND status=$3`, to, id, from)
	if err != nil {
		return err
	}
	return s.oneRowOrConflict(ctx, res, id)
}

// SetCourier records the courier consignment id and moves the order to
// shipped, in one statement. The update is conditional on the order still
// sitting in a pre-shipment status so a second submission cannot overwrite
// the tracking id.
func (s *OrderStore) SetCourier(ctx context.Context, id int64, trackingID string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE orders SET tracking_id=$1, status=$2, updated_at=now()
		WHERE id=$3 AND status IN ($4,$5)`,
		trackingID, models.StatusShipped, id, models.StatusPending, models.StatusConfirmed)
	if err != nil {
		return err
	}
	return s.oneRowOrConflict(ctx, res, id)
}

func (s *OrderStore) oneRowOrConflict(ctx context.Context, res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	var itemsJSON, customerJSON []byte
	err := row.Scan(&o.ID, &o.UserID, &o.SessionID, &itemsJSON, &o.Total, &customerJSON,
		&o.PaymentMethod, &o.PaymentRef, &o.Status, &o.TrackingID, &o.CreatedAt)
	if err != nil {
		return models.Order{}, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return models.Order{}, err
	}
	if err := json.Unmarshal(customerJSON, &o.Customer); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
