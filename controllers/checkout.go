package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"avado-backend/checkout"
	"avado-backend/middleware"
	"avado-backend/models"
	"avado-backend/store"
	"avado-backend/utils"
)

// Orchestrator runs the checkout transaction.
type Orchestrator interface {
	PlaceOrder(ctx context.Context, id checkout.Identity, req checkout.Request) (checkout.Result, error)
}

// OrderStore is the slice of the data layer the order handlers need.
type OrderStore interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id int64) (models.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to string) error
	SetCourier(ctx context.Context, id int64, trackingID string) error
}

// Courier submits committed orders for delivery.
type Courier interface {
	CreateOrder(ctx context.Context, order models.Order) (string, error)
}

// TokenSource lists admin push device tokens.
type TokenSource interface {
	AdminTokens(ctx context.Context) ([]string, error)
}

// Pusher delivers best-effort device notifications.
type Pusher interface {
	Notify(ctx context.Context, tokens []string, title, body string)
}

// CheckoutController handles order placement and the order endpoints that
// grew around it.
type CheckoutController struct {
	Service Orchestrator
	Orders  OrderStore
	Courier Courier
	Tokens  TokenSource
	Push    Pusher
	Email   *utils.EmailService

	JWTSecret []byte
	Prod      bool
}

func NewCheckoutController(svc Orchestrator, orders OrderStore, courier Courier, tokens TokenSource, push Pusher, email *utils.EmailService, secret []byte, prod bool) *CheckoutController {
	return &CheckoutController{
		Service:   svc,
		Orders:    orders,
		Courier:   courier,
		Tokens:    tokens,
		Push:      push,
		Email:     email,
		JWTSecret: secret,
		Prod:      prod,
	}
}

type checkoutInput struct {
	Items         []checkout.ItemInput `json:"items"`
	Total         float64              `json:"total"`
	Customer      models.Customer      `json:"customer"`
	PaymentMethod string               `json:"payment_method"`
	PaymentRef    string               `json:"payment_ref"`
}

// PlaceOrder runs the checkout orchestration for the resolved owner. When a
// guest account was created on the fly, a fresh session cookie logs the
// browser in as that account.
func (oc *CheckoutController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	var in checkoutInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity := checkout.Identity{}
	if owner.IsUser() {
		identity.UserID = owner.UserID
	} else {
		identity.SessionID = owner.GuestID
	}

	res, err := oc.Service.PlaceOrder(r.Context(), identity, checkout.Request{
		Items:         in.Items,
		Total:         in.Total,
		Customer:      in.Customer,
		PaymentMethod: in.PaymentMethod,
		PaymentRef:    in.PaymentRef,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrInvalidInput):
			utils.Error(w, http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, store.ErrNotFound):
			utils.Error(w, http.StatusNotFound, "Product not found")
		default:
			log.Error().Err(err).Msg("checkout failed")
			utils.Error(w, http.StatusInternalServerError, "Checkout failed")
		}
		return
	}

	if res.CreatedUserID != 0 {
		token, err := utils.GenerateJWT(oc.JWTSecret, res.CreatedUserID, models.RoleCustomer)
		if err == nil {
			utils.SetSessionCookie(w, token, oc.Prod)
		} else {
			log.Error().Err(err).Msg("session cookie for new account not issued")
		}
	}

	oc.notifyAdmins(res.Order)

	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "order": res.Order})
}

// notifyAdmins fans the new order out to admin devices and the admin inbox.
// Runs after commit and never fails the request.
func (oc *CheckoutController) notifyAdmins(order models.Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if oc.Tokens != nil && oc.Push != nil {
			tokens, err := oc.Tokens.AdminTokens(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("loading admin push tokens failed")
			} else {
				oc.Push.Notify(ctx, tokens, "New order",
					fmt.Sprintf("Order #%d placed, total %.2f", order.ID, order.Total))
			}
		}
		if oc.Email != nil {
			oc.Email.NotifyNewOrder(order.ID, order.Total)
		}
	}()
}

// MyOrders lists the calling user's past orders. Requires a valid session;
// guests have nothing to list here.
func (oc *CheckoutController) MyOrders(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(utils.SessionCookie)
	if err != nil || cookie.Value == "" {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	claims, err := utils.ParseJWT(oc.JWTSecret, cookie.Value)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := oc.Orders.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to load orders")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "orders": orders})
}

// AdminAllOrders lists every order for the dashboard.
func (oc *CheckoutController) AdminAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := oc.Orders.ListAll(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to fetch admin orders")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "orders": orders})
}

// UpdateStatus moves an order along the status state machine. Unknown
// statuses and illegal transitions are rejected.
func (oc *CheckoutController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var in struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Status == "" {
		utils.Error(w, http.StatusBadRequest, "Status is required")
		return
	}
	if !models.ValidStatus(in.Status) {
		utils.Error(w, http.StatusBadRequest, "Unknown status")
		return
	}

	order, err := oc.Orders.Get(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Order not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	if !models.CanTransition(order.Status, in.Status) {
		utils.Error(w, http.StatusBadRequest,
			fmt.Sprintf("Cannot move order from %s to %s", order.Status, in.Status))
		return
	}

	// The observed status rides along as the update's condition, so a
	// concurrent admin who moved the order first makes this a conflict
	// instead of an illegal transition.
	if err := oc.Orders.UpdateStatus(r.Context(), orderID, order.Status, in.Status); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			utils.Error(w, http.StatusConflict, "Order status changed, reload and retry")
		case errors.Is(err, store.ErrNotFound):
			utils.Error(w, http.StatusNotFound, "Order not found")
		default:
			utils.Error(w, http.StatusInternalServerError, "Failed to update order status")
		}
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": in.Status})
}

// SendCourier submits an order to the courier service and records the
// returned tracking id. This endpoint's sole purpose is the upstream call,
// so its failure surfaces as 502.
func (oc *CheckoutController) SendCourier(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	order, err := oc.Orders.Get(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "Order not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	if order.Status != models.StatusPending && order.Status != models.StatusConfirmed {
		utils.Error(w, http.StatusBadRequest, "Order is not ready for courier submission")
		return
	}

	tracking, err := oc.Courier.CreateOrder(r.Context(), order)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("courier submission failed")
		utils.Error(w, http.StatusBadGateway, "Courier submission failed")
		return
	}

	if err := oc.Orders.SetCourier(r.Context(), orderID, tracking); err != nil {
		if errors.Is(err, store.ErrConflict) {
			utils.Error(w, http.StatusConflict, "Order already left pre-shipment, tracking id not saved")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to save tracking id")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "tracking_id": tracking})
}
