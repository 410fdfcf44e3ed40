package store

import (
	"context"
	"database/sql"
)

// NotificationStore keeps one push device token per admin user.
type NotificationStore struct {
	DB *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{DB: db}
}

// SaveToken upserts the device token for a user.
func (s *NotificationStore) SaveToken(ctx context.Context, userID int64, token string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO user_notification_tokens (user_id, fcm_token)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET fcm_token = EXCLUDED.fcm_token, updated_at = now()`, userID, token)
	return err
}

// AdminTokens returns the device tokens of every admin user.
func (s *NotificationStore) AdminTokens(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT t.fcm_token
		FROM user_notification_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE u.role = 'admin'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var tok string
		if err := rows.Scan(&tok); err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, rows.Err()
}
