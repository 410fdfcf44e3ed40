package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"avado-backend/models"
	"avado-backend/store"
	"avado-backend/utils"
)

// ProductStore is the slice of the data layer the product handlers need.
type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int64) (models.Product, error)
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Update(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id int64) error
}

// ProductController handles catalog requests.
type ProductController struct {
	Products ProductStore
}

// NewProductController creates a new ProductController
func NewProductController(products ProductStore) *ProductController {
	return &ProductController{Products: products}
}

// GetProducts retrieves the whole catalog
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := pc.Products.List(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	utils.JSON(w, http.StatusOK, products)
}

// GetProductByID retrieves one product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := pc.Products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	utils.JSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if product.Name == "" || product.Price <= 0 {
		utils.Error(w, http.StatusBadRequest, "Name and positive price required")
		return
	}

	created, err := pc.Products.Create(r.Context(), product)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Error creating product")
		return
	}
	utils.JSON(w, http.StatusCreated, created)
}

// UpdateProduct replaces a product's fields (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	product.ID = id

	if err := pc.Products.Update(r.Context(), product); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Error updating product")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteProduct removes a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := pc.Products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Error deleting product")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
