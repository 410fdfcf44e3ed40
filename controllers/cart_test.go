package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"avado-backend/middleware"
	"avado-backend/models"
	"avado-backend/store"
)

type fakeCartStore struct {
	lines []models.CartLine

	addedQty      int
	addedVariants map[string]string
	updated       map[int64]int
	removed       []int64
	cleared       bool

	knownLines map[int64]bool
	missing    bool // product lookup fails on Add
}

func (f *fakeCartStore) List(_ context.Context, _ models.Owner) ([]models.CartLine, error) {
	return f.lines, nil
}

func (f *fakeCartStore) Add(_ context.Context, _ models.Owner, productID int64, qty int, _ float64, _ string, variants map[string]string) (int64, error) {
	if f.missing {
		return 0, store.ErrNotFound
	}
	if qty < 1 {
		qty = 1
	}
	f.addedQty = qty
	f.addedVariants = variants
	return 11, nil
}

func (f *fakeCartStore) UpdateQuantity(_ context.Context, _ models.Owner, lineID int64, qty int) error {
	if !f.knownLines[lineID] {
		return store.ErrNotFound
	}
	if f.updated == nil {
		f.updated = map[int64]int{}
	}
	f.updated[lineID] = qty
	return nil
}

func (f *fakeCartStore) Remove(_ context.Context, _ models.Owner, lineID int64) error {
	if !f.knownLines[lineID] {
		return store.ErrNotFound
	}
	f.removed = append(f.removed, lineID)
	return nil
}

func (f *fakeCartStore) Clear(_ context.Context, _ models.Owner) error {
	f.cleared = true
	return nil
}

// cartRouter wires the controller behind the real UserOrGuest middleware so
// the handlers' owner resolution is exercised end to end.
func cartRouter(f *fakeCartStore) *mux.Router {
	cc := NewCartController(f)
	r := mux.NewRouter()
	sub := r.PathPrefix("/api/cart").Subrouter()
	sub.Use(middleware.UserOrGuest(nilUsers{}, []byte("test-secret"), false))
	sub.HandleFunc("", cc.GetCart).Methods("GET")
	sub.HandleFunc("/add", cc.AddToCart).Methods("POST")
	sub.HandleFunc("/update/{id}", cc.UpdateQuantity).Methods("PUT")
	sub.HandleFunc("/remove/{id}", cc.RemoveItem).Methods("DELETE")
	sub.HandleFunc("/clear", cc.ClearCart).Methods("DELETE")
	return r
}

type nilUsers struct{}

func (nilUsers) Exists(context.Context, int64) (bool, error) { return false, nil }

func do(r *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: "guest_session", Value: "guest_test"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAddToCart(t *testing.T) {
	t.Run("clamps quantity to one", func(t *testing.T) {
		f := &fakeCartStore{}
		rec := do(cartRouter(f), "POST", "/api/cart/add", `{"product_id":1,"quantity":0}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 1, f.addedQty)
	})

	t.Run("keeps variant selection", func(t *testing.T) {
		f := &fakeCartStore{}
		rec := do(cartRouter(f), "POST", "/api/cart/add",
			`{"product_id":1,"quantity":2,"variants":{"size":"XL","color":"red"}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, map[string]string{"size": "XL", "color": "red"}, f.addedVariants)
	})

	t.Run("missing product id -> 400", func(t *testing.T) {
		rec := do(cartRouter(&fakeCartStore{}), "POST", "/api/cart/add", `{"quantity":1}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown product -> 404", func(t *testing.T) {
		rec := do(cartRouter(&fakeCartStore{missing: true}), "POST", "/api/cart/add", `{"product_id":9,"quantity":1}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateQuantity(t *testing.T) {
	t.Run("quantity below one -> 400", func(t *testing.T) {
		f := &fakeCartStore{knownLines: map[int64]bool{5: true}}
		rec := do(cartRouter(f), "PUT", "/api/cart/update/5", `{"quantity":0}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, f.updated)
	})

	t.Run("unknown line -> 404", func(t *testing.T) {
		f := &fakeCartStore{knownLines: map[int64]bool{}}
		rec := do(cartRouter(f), "PUT", "/api/cart/update/5", `{"quantity":2}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("updates owned line", func(t *testing.T) {
		f := &fakeCartStore{knownLines: map[int64]bool{5: true}}
		rec := do(cartRouter(f), "PUT", "/api/cart/update/5", `{"quantity":3}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 3, f.updated[5])
	})
}

func TestRemoveAndClear(t *testing.T) {
	t.Run("removing a nonexistent line -> 404", func(t *testing.T) {
		rec := do(cartRouter(&fakeCartStore{knownLines: map[int64]bool{}}), "DELETE", "/api/cart/remove/9", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("clearing an empty cart succeeds", func(t *testing.T) {
		f := &fakeCartStore{}
		rec := do(cartRouter(f), "DELETE", "/api/cart/clear", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, f.cleared)
	})
}
