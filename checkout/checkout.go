// Package checkout implements the transactional flow that converts a cart
// into a persisted order: resolve or create the acting user, snapshot
// server-recomputed prices, insert the order, and clear the owning cart, all
// committed or rolled back as one unit. It is isolated from HTTP so the
// state machine can be exercised directly in tests.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"avado-backend/models"
	"avado-backend/store"
)

var (
	// ErrInvalidInput marks a request rejected before any database work.
	ErrInvalidInput = errors.New("invalid checkout input")
	// ErrCheckoutFailed marks any failure inside the transaction; the
	// transaction has been rolled back when it is returned.
	ErrCheckoutFailed = errors.New("checkout failed")
)

// ItemInput is one requested order line. Only the product reference and
// quantity are trusted; prices are recomputed server-side.
type ItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Request is a validated checkout submission.
type Request struct {
	Items         []ItemInput
	Total         float64
	Customer      models.Customer
	PaymentMethod string
	PaymentRef    string
}

// Identity is the resolved caller: a verified user id (0 when absent) plus
// the guest-session id the order and cart are attributed to.
type Identity struct {
	UserID    int64
	SessionID string
}

// Result carries the committed order plus the id of any account created on
// the fly, so the HTTP layer can issue a fresh session cookie.
type Result struct {
	Order         models.Order
	CreatedUserID int64
}

// Catalog supplies live product pricing for the normalization step.
type Catalog interface {
	Get(ctx context.Context, id int64) (models.Product, error)
}

// Tx is the unit of work open for one checkout call.
type Tx interface {
	FindUserIDByPhone(ctx context.Context, phone string) (int64, error)
	CreateUser(ctx context.Context, email, phone, passwordHash string) (int64, error)
	InsertOrder(ctx context.Context, o models.Order) (models.Order, error)
	ClearUserCart(ctx context.Context, userID int64) error
	ClearGuestCart(ctx context.Context, sessionID string) error
	Commit() error
	Rollback() error
}

// Store opens checkout transactions.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Service runs the checkout state machine.
type Service struct {
	catalog       Catalog
	store         Store
	maxConcurrent int
}

func NewService(catalog Catalog, txStore Store, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Service{catalog: catalog, store: txStore, maxConcurrent: maxConcurrent}
}

const (
	defaultPaymentMethod = "Cash on Delivery"
	autoEmailDomain      = "@auto.avado.com"
)

// PlaceOrder executes one checkout. Steps 1–2 (validation, price
// normalization) run before the transaction opens; a failure there leaves no
// trace. Steps 3–5 run inside a single transaction and any error rolls the
// whole thing back.
func (s *Service) PlaceOrder(ctx context.Context, id Identity, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	items, total, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return Result{}, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	res, err := s.placeOrderTx(ctx, tx, id, req, items, total)
	if err != nil {
		tx.Rollback()
		return Result{}, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	return res, nil
}

func validate(req Request) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidInput)
	}
	for _, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			return fmt.Errorf("%w: bad item", ErrInvalidInput)
		}
	}
	if req.Total <= 0 {
		return fmt.Errorf("%w: missing total", ErrInvalidInput)
	}
	if req.Customer.Name == "" || req.Customer.Address == "" {
		return fmt.Errorf("%w: missing customer info", ErrInvalidInput)
	}
	return nil
}

// priceItems recomputes each line's effective price from the live catalog.
// Client-submitted prices and totals are never persisted.
func (s *Service) priceItems(ctx context.Context, inputs []ItemInput) ([]models.OrderItem, float64, error) {
	items := make([]models.OrderItem, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range inputs {
		idx := idx
		g.Go(func() error {
			in := inputs[idx]
			product, err := s.catalog.Get(ctx, in.ProductID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("product %d: %w", in.ProductID, store.ErrNotFound)
				}
				return err
			}
			items[idx] = models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  in.Quantity,
				Price:     product.EffectivePrice(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return items, total, nil
}

func (s *Service) placeOrderTx(ctx context.Context, tx Tx, id Identity, req Request, items []models.OrderItem, total float64) (Result, error) {
	userID := id.UserID
	var createdUserID int64

	// Guest with a phone number: adopt the matching account or silently
	// create one so the shopper can log in with that phone later.
	if userID == 0 && req.Customer.Phone != "" {
		phone := strings.TrimSpace(req.Customer.Phone)
		found, err := tx.FindUserIDByPhone(ctx, phone)
		switch {
		case err == nil:
			userID = found
		case errors.Is(err, store.ErrNotFound):
			hash, err := bcrypt.GenerateFromPassword([]byte(phone), bcrypt.DefaultCost)
			if err != nil {
				return Result{}, err
			}
			created, err := tx.CreateUser(ctx, phone+autoEmailDomain, phone, string(hash))
			if err != nil {
				return Result{}, err
			}
			userID = created
			createdUserID = created
		default:
			return Result{}, err
		}
	}

	order := models.Order{
		Items:         items,
		Total:         total,
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
		PaymentRef:    req.PaymentRef,
		Status:        models.StatusPending,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = defaultPaymentMethod
	}
	if order.PaymentRef != "" {
		order.Status = models.StatusPendingPayment
	}
	if userID != 0 {
		order.UserID = &userID
	}
	if id.SessionID != "" {
		sid := id.SessionID
		order.SessionID = &sid
	}

	order, err := tx.InsertOrder(ctx, order)
	if err != nil {
		return Result{}, err
	}

	// Clear both owners' carts: a guest who just got (or matched) an
	// account still has session-keyed rows, and the guest cookie outlives
	// the session token, so leaving them would resurface purchased items.
	if userID != 0 {
		if err := tx.ClearUserCart(ctx, userID); err != nil {
			return Result{}, err
		}
	}
	if id.SessionID != "" {
		if err := tx.ClearGuestCart(ctx, id.SessionID); err != nil {
			return Result{}, err
		}
	}

	return Result{Order: order, CreatedUserID: createdUserID}, nil
}
