package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"avado-backend/middleware"
	"avado-backend/models"
	"avado-backend/store"
	"avado-backend/utils"
)

// CartStore is the slice of the data layer the cart handlers need.
type CartStore interface {
	List(ctx context.Context, owner models.Owner) ([]models.CartLine, error)
	Add(ctx context.Context, owner models.Owner, productID int64, quantity int, unitPrice float64, imageURL string, variants map[string]string) (int64, error)
	UpdateQuantity(ctx context.Context, owner models.Owner, lineID int64, quantity int) error
	Remove(ctx context.Context, owner models.Owner, lineID int64) error
	Clear(ctx context.Context, owner models.Owner) error
}

// CartController handles cart-related requests. Every operation is keyed by
// the Owner resolved by the UserOrGuest middleware.
type CartController struct {
	Carts CartStore
}

// NewCartController creates a new CartController
func NewCartController(carts CartStore) *CartController {
	return &CartController{Carts: carts}
}

// GetCart retrieves the owner's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	lines, err := cc.Carts.List(r.Context(), owner)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"cart": lines})
}

type addToCartInput struct {
	ProductID int64             `json:"product_id"`
	Quantity  int               `json:"quantity"`
	Price     float64           `json:"price"`
	ImageURL  string            `json:"image_url"`
	Variants  map[string]string `json:"variants"`
}

// AddToCart adds a product line to the owner's cart. Repeated adds always
// create a new line; variant selections keep otherwise-identical products
// apart.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	var in addToCartInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if in.ProductID <= 0 {
		utils.Error(w, http.StatusBadRequest, "Missing or invalid product_id")
		return
	}

	lineID, err := cc.Carts.Add(r.Context(), owner, in.ProductID, in.Quantity, in.Price, in.ImageURL, in.Variants)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      lineID,
		"message": "Item added to cart",
	})
}

// UpdateQuantity sets a cart line's quantity
func (cc *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	lineID, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if in.Quantity < 1 {
		utils.Error(w, http.StatusBadRequest, "Quantity must be >= 1")
		return
	}

	if err := cc.Carts.UpdateQuantity(r.Context(), owner, lineID, in.Quantity); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Cart item not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// RemoveItem deletes one cart line
func (cc *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	lineID, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	if err := cc.Carts.Remove(r.Context(), owner, lineID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Item not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to remove item")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Item removed from cart",
	})
}

// ClearCart empties the owner's cart. Clearing an already-empty cart
// succeeds.
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	if err := cc.Carts.Clear(r.Context(), owner); err != nil {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Cart cleared"})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
