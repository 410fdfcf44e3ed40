package store

import (
	"context"
	"database/sql"

	"avado-backend/models"
)

// Overview aggregates the admin dashboard numbers.
type Overview struct {
	TotalOrders     int64          `json:"total_orders"`
	PendingOrders   int64          `json:"pending_orders"`
	DeliveredOrders int64          `json:"delivered_orders"`
	TotalRevenue    float64        `json:"total_revenue"`
	MonthlySales    []MonthlySales `json:"monthly_sales"`
}

// MonthlySales is delivered revenue bucketed by month.
type MonthlySales struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// StatsStore runs the dashboard aggregate queries.
type StatsStore struct {
	DB *sql.DB
}

func NewStatsStore(db *sql.DB) *StatsStore {
	return &StatsStore{DB: db}
}

// Overview computes order counts, delivered revenue, and a six-month sales
// series.
func (s *StatsStore) Overview(ctx context.Context) (Overview, error) {
	var ov Overview
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $1),
		       COUNT(*) FILTER (WHERE status = $2),
		       COALESCE(SUM(total) FILTER (WHERE status = $2), 0)
		FROM orders`, models.StatusPending, models.StatusDelivered).
		Scan(&ov.TotalOrders, &ov.PendingOrders, &ov.DeliveredOrders, &ov.TotalRevenue)
	if err != nil {
		return Overview{}, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT TO_CHAR(created_at, 'Mon') AS month, SUM(total) AS total
		FROM orders
		WHERE status = $1
		GROUP BY month, date_trunc('month', created_at)
		ORDER BY date_trunc('month', created_at)
		LIMIT 6`, models.StatusDelivered)
	if err != nil {
		return Overview{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var m MonthlySales
		if err := rows.Scan(&m.Month, &m.Total); err != nil {
			return Overview{}, err
		}
		ov.MonthlySales = append(ov.MonthlySales, m)
	}
	return ov, rows.Err()
}
