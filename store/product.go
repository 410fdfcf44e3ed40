package store

import (
	"context"
	"database/sql"
	"errors"

	"avado-backend/models"
)

// ProductStore persists the catalog.
type ProductStore struct {
	DB *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{DB: db}
}

const productColumns = `id, name, COALESCE(description,''), price, COALESCE(discount_percent,0), COALESCE(image_url,''), COALESCE(category,''), created_at`

// List returns the whole catalog, newest first.
func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Get loads one product by id.
func (s *ProductStore) Get(ctx context.Context, id int64) (models.Product, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DiscountPercent,
		&p.ImageURL, &p.Category, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

// Create inserts a product and returns it with the generated id.
func (s *ProductStore) Create(ctx context.Context, p models.Product) (models.Product, error) {
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, discount_percent, image_url, category)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		p.Name, p.Description, p.Price, p.DiscountPercent, p.ImageURL, p.Category).
		Scan(&p.ID, &p.CreatedAt)
	return p, err
}

// Update replaces a product's editable fields.
func (s *ProductStore) Update(ctx context.Context, p models.Product) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE products
		SET name=$1, description=$2, price=$3, discount_percent=$4, image_url=$5, category=$6
		WHERE id=$7`,
		p.Name, p.Description, p.Price, p.DiscountPercent, p.ImageURL, p.Category, p.ID)
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

// Delete removes a product.
func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
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

func scanProduct(rows *sql.Rows) (models.Product, error) {
	var p models.Product
	err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DiscountPercent,
		&p.ImageURL, &p.Category, &p.CreatedAt)
	return p, err
}
