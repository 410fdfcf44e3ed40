package models

import "time"

// Product is a catalog entry. Price and discount live here; carts and orders
// snapshot them rather than referencing them live.
type Product struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Price           float64   `json:"price"`
	DiscountPercent float64   `json:"discount_percent"`
	ImageURL        string    `json:"image_url,omitempty"`
	Category        string    `json:"category,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// EffectivePrice applies the product's discount percentage to its list price.
func (p Product) EffectivePrice() float64 {
	if p.DiscountPercent <= 0 {
		return p.Price
	}
	return p.Price - p.Price*p.DiscountPercent/100
}
