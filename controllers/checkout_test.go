package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"avado-backend/checkout"
	"avado-backend/middleware"
	"avado-backend/models"
	"avado-backend/services"
	"avado-backend/store"
	"avado-backend/utils"
)

var testSecret = []byte("test-secret")

type fakeOrchestrator struct {
	identity checkout.Identity
	result   checkout.Result
	err      error
}

func (f *fakeOrchestrator) PlaceOrder(_ context.Context, id checkout.Identity, _ checkout.Request) (checkout.Result, error) {
	f.identity = id
	return f.result, f.err
}

type fakeOrderStore struct {
	orders   map[int64]models.Order
	statuses map[int64]string
	tracking map[int64]string

	// swapAfterGet, when set, flips the stored status right after a Get,
	// imitating a concurrent writer landing between read and write.
	swapAfterGet string
}

func (f *fakeOrderStore) ListByUser(_ context.Context, userID int64) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range f.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ListAll(context.Context) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderStore) Get(_ context.Context, id int64) (models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	if f.swapAfterGet != "" {
		moved := o
		moved.Status = f.swapAfterGet
		f.orders[id] = moved
	}
	return o, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, id int64, from, to string) error {
	o, ok := f.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	if o.Status != from {
		return store.ErrConflict
	}
	o.Status = to
	f.orders[id] = o
	if f.statuses == nil {
		f.statuses = map[int64]string{}
	}
	f.statuses[id] = to
	return nil
}

func (f *fakeOrderStore) SetCourier(_ context.Context, id int64, trackingID string) error {
	o, ok := f.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	if o.Status != models.StatusPending && o.Status != models.StatusConfirmed {
		return store.ErrConflict
	}
	o.Status = models.StatusShipped
	o.TrackingID = trackingID
	f.orders[id] = o
	if f.tracking == nil {
		f.tracking = map[int64]string{}
	}
	f.tracking[id] = trackingID
	return nil
}

type fakeCourier struct {
	tracking string
	err      error
}

func (f fakeCourier) CreateOrder(context.Context, models.Order) (string, error) {
	return f.tracking, f.err
}

func checkoutRouter(orch *fakeOrchestrator, orders *fakeOrderStore, courier Courier) *mux.Router {
	oc := NewCheckoutController(orch, orders, courier, nil, nil, nil, testSecret, false)
	r := mux.NewRouter()
	sub := r.PathPrefix("/api/checkout").Subrouter()
	sub.Handle("", middleware.UserOrGuest(nilUsers{}, testSecret, false)(http.HandlerFunc(oc.PlaceOrder))).Methods("POST")
	sub.HandleFunc("", oc.MyOrders).Methods("GET")
	adminSub := sub.PathPrefix("/admin").Subrouter()
	adminSub.Use(middleware.AdminOnly(testSecret))
	adminSub.HandleFunc("/all", oc.AdminAllOrders).Methods("GET")
	adminSub.HandleFunc("/{id}/status", oc.UpdateStatus).Methods("PUT")
	adminSub.HandleFunc("/{id}/send-courier", oc.SendCourier).Methods("POST")
	return r
}

const checkoutBody = `{
	"items":[{"product_id":1,"quantity":2}],
	"total":250,
	"customer":{"name":"Rahim","phone":"01812345678","address":"Dhaka"}
}`

func TestPlaceOrderSetsSessionCookieForNewUser(t *testing.T) {
	orch := &fakeOrchestrator{result: checkout.Result{
		Order:         models.Order{ID: 1, Total: 250},
		CreatedUserID: 501,
	}}
	r := checkoutRouter(orch, &fakeOrderStore{}, fakeCourier{})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(checkoutBody))
	req.AddCookie(&http.Cookie{Name: utils.GuestCookie, Value: "g1"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, checkout.Identity{SessionID: "g1"}, orch.identity)

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == utils.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session, "new account must get a session cookie")

	claims, err := utils.ParseJWT(testSecret, session.Value)
	require.NoError(t, err)
	require.Equal(t, int64(501), claims.UserID)
}

func TestPlaceOrderNoCookieWithoutNewUser(t *testing.T) {
	orch := &fakeOrchestrator{result: checkout.Result{Order: models.Order{ID: 1}}}
	r := checkoutRouter(orch, &fakeOrderStore{}, fakeCourier{})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(checkoutBody))
	req.AddCookie(&http.Cookie{Name: utils.GuestCookie, Value: "g1"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		require.NotEqual(t, utils.SessionCookie, c.Name)
	}
}

func TestPlaceOrderErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", checkout.ErrInvalidInput, http.StatusBadRequest},
		{"unknown product", store.ErrNotFound, http.StatusNotFound},
		{"transaction failure", checkout.ErrCheckoutFailed, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orch := &fakeOrchestrator{err: tc.err}
			r := checkoutRouter(orch, &fakeOrderStore{}, fakeCourier{})
			req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(checkoutBody))
			req.AddCookie(&http.Cookie{Name: utils.GuestCookie, Value: "g1"})
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			require.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestMyOrdersRequiresSession(t *testing.T) {
	r := checkoutRouter(&fakeOrchestrator{}, &fakeOrderStore{}, fakeCourier{})

	t.Run("no cookie -> 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/checkout", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid cookie -> own orders only", func(t *testing.T) {
		uid := int64(7)
		other := int64(8)
		orders := &fakeOrderStore{orders: map[int64]models.Order{
			1: {ID: 1, UserID: &uid},
			2: {ID: 2, UserID: &other},
		}}
		r := checkoutRouter(&fakeOrchestrator{}, orders, fakeCourier{})

		token, err := utils.GenerateJWT(testSecret, 7, models.RoleCustomer)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/checkout", nil)
		req.AddCookie(&http.Cookie{Name: utils.SessionCookie, Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"id":1`)
		require.NotContains(t, rec.Body.String(), `"id":2`)
	})
}

func adminReq(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	token, err := utils.GenerateJWT(testSecret, 1, models.RoleAdmin)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: utils.SessionCookie, Value: token})
	return req
}

func TestUpdateStatusTransitions(t *testing.T) {
	newStore := func(status string) *fakeOrderStore {
		return &fakeOrderStore{orders: map[int64]models.Order{5: {ID: 5, Status: status}}}
	}

	t.Run("pending -> confirmed ok", func(t *testing.T) {
		orders := newStore(models.StatusPending)
		r := checkoutRouter(&fakeOrchestrator{}, orders, fakeCourier{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(t, http.MethodPut, "/api/checkout/admin/5/status", `{"status":"confirmed"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, models.StatusConfirmed, orders.statuses[5])
	})

	t.Run("delivered is terminal", func(t *testing.T) {
		r := checkoutRouter(&fakeOrchestrator{}, newStore(models.StatusDelivered), fakeCourier{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(t, http.MethodPut, "/api/checkout/admin/5/status", `{"status":"pending"}`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown status -> 400", func(t *testing.T) {
		r := checkoutRouter(&fakeOrchestrator{}, newStore(models.StatusPending), fakeCourier{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(t, http.MethodPut, "/api/checkout/admin/5/status", `{"status":"teleported"}`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("concurrent transition -> 409", func(t *testing.T) {
		orders := newStore(models.StatusPending)
		orders.swapAfterGet = models.StatusCancelled
		r := checkoutRouter(&fakeOrchestrator{}, orders, fakeCourier{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(t, http.MethodPut, "/api/checkout/admin/5/status", `{"status":"confirmed"}`))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Empty(t, orders.statuses, "losing writer must not apply its transition")
	})

	t.Run("missing order -> 404", func(t *testing.T) {
		r := checkoutRouter(&fakeOrchestrator{}, &fakeOrderStore{orders: map[int64]models.Order{}}, fakeCourier{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(t, http.MethodPut, "/api/checkout/admin/5/status", `{"status":"confirmed"}`))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("customer token -> 403", func(t *testing.T) {
		r := checkoutRouter(&fakeOrchestrator{}, newStore(models.StatusPending), fakeCourier{})
		token, err := utils.GenerateJWT(testSecret, 7, models.RoleCustomer)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/api/checkout/admin/5/status", strings.NewReader(`{"status":"confirmed"}`))
		req.AddCookie(&http.Cookie{Name: utils.SessionCookie, Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestSendCourier(t *testing.T) {
	newStore := func(status string) *fakeOrderStore {
		return &fakeOrderStore{orders: map[int64]models.Order{5: {ID: 5, Status: status, Total: 250}}}
	}

	t.Run("persists tracking id", func(t *testing.T) {
		orders := newStore(models.StatusConfirmed)
		r := checkoutRouter(&fakeOrchestrator{}, orders, fakeCourier{tracking: "TRK-1"})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(t, http.MethodPost, "/api/checkout/admin/5/send-courier", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "TRK-1", orders.tracking[5])
	})

	t.Run("upstream failure -> 502, nothing persisted", func(t *testing.T) {
		orders := newStore(models.StatusConfirmed)
		r := checkoutRouter(&fakeOrchestrator{}, orders, fakeCourier{err: services.ErrUpstream})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(t, http.MethodPost, "/api/checkout/admin/5/send-courier", ""))
		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Empty(t, orders.tracking)
	})

	t.Run("shipped order -> 400", func(t *testing.T) {
		r := checkoutRouter(&fakeOrchestrator{}, newStore(models.StatusShipped), fakeCourier{tracking: "TRK-1"})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(t, http.MethodPost, "/api/checkout/admin/5/send-courier", ""))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("shipped between read and write -> 409", func(t *testing.T) {
		orders := newStore(models.StatusConfirmed)
		orders.swapAfterGet = models.StatusShipped
		r := checkoutRouter(&fakeOrchestrator{}, orders, fakeCourier{tracking: "TRK-2"})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, adminReq(t, http.MethodPost, "/api/checkout/admin/5/send-courier", ""))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Empty(t, orders.tracking, "second submission must not overwrite tracking")
	})
}
