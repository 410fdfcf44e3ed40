package models

import "time"

// CartLine is one product (with an optional chosen variant combination)
// added by one owner. Unit price and image are snapshotted at add time so
// later catalog edits don't retroactively change the cart.
type CartLine struct {
	ID        int64             `json:"id"`
	ProductID int64             `json:"product_id"`
	Quantity  int               `json:"quantity"`
	UnitPrice float64           `json:"unit_price"`
	ImageURL  string            `json:"image_url,omitempty"`
	Variants  map[string]string `json:"variants,omitempty"`
	CreatedAt time.Time         `json:"created_at"`

	// Live product display fields, joined on read.
	Name            string  `json:"name"`
	DiscountPercent float64 `json:"discount_percent"`
}
