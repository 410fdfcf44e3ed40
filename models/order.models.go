package models

import "time"

// Order statuses. The set is closed and transitions are validated; staff may
// not move an order along a path the table below doesn't allow.
const (
	StatusPending        = "pending"
	StatusPendingPayment = "pending_payment"
	StatusConfirmed      = "confirmed"
	StatusShipped        = "shipped"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

var statusTransitions = map[string][]string{
	StatusPendingPayment: {StatusPending, StatusConfirmed, StatusCancelled},
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDelivered},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order's frozen item snapshot. Price is the
// server-recomputed discounted unit price at checkout time.
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Customer is the shipping/contact info submitted at checkout, persisted as
// an immutable snapshot on the order.
type Customer struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Thana    string `json:"thana,omitempty"`
	Upazila  string `json:"upazila,omitempty"`
	District string `json:"district,omitempty"`
}

// Order is created exactly once per checkout. Item and customer snapshots
// are frozen at creation and never re-derived from live data; only status
// and courier tracking fields change afterwards, by staff action.
type Order struct {
	ID            int64       `json:"id"`
	UserID        *int64      `json:"user_id"`
	SessionID     *string     `json:"session_id"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	Customer      Customer    `json:"customer"`
	PaymentMethod string      `json:"payment_method"`
	PaymentRef    string      `json:"payment_ref,omitempty"`
	Status        string      `json:"status"`
	TrackingID    string      `json:"tracking_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}
