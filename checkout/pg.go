package checkout

import (
	"context"
	"database/sql"

	"avado-backend/models"
	"avado-backend/store"
)

// PGStore adapts the shared *sql.DB pool to the orchestrator's transaction
// interface.
type PGStore struct {
	DB *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) FindUserIDByPhone(ctx context.Context, phone string) (int64, error) {
	return store.FindIDByPhoneTx(ctx, t.tx, phone)
}

func (t *pgTx) CreateUser(ctx context.Context, email, phone, passwordHash string) (int64, error) {
	return store.CreateTx(ctx, t.tx, email, phone, passwordHash)
}

func (t *pgTx) InsertOrder(ctx context.Context, o models.Order) (models.Order, error) {
	return store.InsertTx(ctx, t.tx, o)
}

func (t *pgTx) ClearUserCart(ctx context.Context, userID int64) error {
	return store.ClearUserTx(ctx, t.tx, userID)
}

func (t *pgTx) ClearGuestCart(ctx context.Context, sessionID string) error {
	return store.ClearGuestTx(ctx, t.tx, sessionID)
}

func (t *pgTx) Commit() error   { return t.tx.Commit() }
func (t *pgTx) Rollback() error { return t.tx.Rollback() }
