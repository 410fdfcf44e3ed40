package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"avado-backend/models"
)

// CartStore persists cart lines. All operations are keyed by Owner, never by
// raw request fields, so one owner cannot touch another owner's cart.
type CartStore struct {
	DB *sql.DB
}

func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{DB: db}
}

func ownerColumn(owner models.Owner) (string, interface{}) {
	if owner.IsUser() {
		return "user_id", owner.UserID
	}
	return "session_id", owner.GuestID
}

// List returns the owner's cart lines joined with live product display
// fields, most recently added first.
func (s *CartStore) List(ctx context.Context, owner models.Owner) ([]models.CartLine, error) {
	col, id := ownerColumn(owner)
	rows, err := s.DB.QueryContext(ctx, `
		SELECT c.id, c.product_id, c.quantity, c.unit_price, c.image_url,
		       c.variants, c.created_at, p.name, p.discount_percent
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.`+col+` = $1
		ORDER BY c.id DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []models.CartLine{}
	for rows.Next() {
		var line models.CartLine
		var variants []byte
		if err := rows.Scan(&line.ID, &line.ProductID, &line.Quantity, &line.UnitPrice,
			&line.ImageURL, &variants, &line.CreatedAt, &line.Name, &line.DiscountPercent); err != nil {
			return nil, err
		}
		if len(variants) > 0 {
			if err := json.Unmarshal(variants, &line.Variants); err != nil {
				return nil, err
			}
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// Add inserts a new cart line. Repeated adds of the same product always
// produce a new line: variant selections differentiate otherwise-identical
// products, so lines are never merged.
func (s *CartStore) Add(ctx context.Context, owner models.Owner, productID int64, quantity int, unitPrice float64, imageURL string, variants map[string]string) (int64, error) {
	if quantity < 1 {
		quantity = 1
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrNotFound
	}

	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		return 0, err
	}

	col, id := ownerColumn(owner)
	var lineID int64
	err = s.DB.QueryRowContext(ctx, `
		INSERT INTO carts (`+col+`, product_id, quantity, unit_price, image_url, variants)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`, id, productID, quantity, unitPrice, imageURL, variantsJSON).Scan(&lineID)
	if err != nil {
		return 0, err
	}
	return lineID, nil
}

// UpdateQuantity sets a line's quantity. The line must belong to the owner;
// a line owned by someone else is indistinguishable from a missing one.
func (s *CartStore) UpdateQuantity(ctx context.Context, owner models.Owner, lineID int64, quantity int) error {
	col, id := ownerColumn(owner)
	res, err := s.DB.ExecContext(ctx, `
		UPDATE carts SET quantity=$1, updated_at=now()
		WHERE id=$2 AND `+col+`=$3`, quantity, lineID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes one of the owner's lines.
func (s *CartStore) Remove(ctx context.Context, owner models.Owner, lineID int64) error {
	col, id := ownerColumn(owner)
	res, err := s.DB.ExecContext(ctx, `DELETE FROM carts WHERE id=$1 AND `+col+`=$2`, lineID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every line for the owner. Clearing an empty cart succeeds.
func (s *CartStore) Clear(ctx context.Context, owner models.Owner) error {
	col, id := ownerColumn(owner)
	_, err := s.DB.ExecContext(ctx, `DELETE FROM carts WHERE `+col+`=$1`, id)
	return err
}

// ClearUserTx and ClearGuestTx run the checkout-time cart clear inside the
// order transaction.
func ClearUserTx(ctx context.Context, q Querier, userID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM carts WHERE user_id=$1`, userID)
	return err
}

func ClearGuestTx(ctx context.Context, q Querier, sessionID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM carts WHERE session_id=$1`, sessionID)
	return err
}
