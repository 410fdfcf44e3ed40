package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"avado-backend/middleware"
	"avado-backend/utils"
)

// TokenStore persists push device tokens.
type TokenStore interface {
	SaveToken(ctx context.Context, userID int64, token string) error
}

// NotificationController registers admin devices for order notifications.
type NotificationController struct {
	Tokens TokenStore
}

func NewNotificationController(tokens TokenStore) *NotificationController {
	return &NotificationController{Tokens: tokens}
}

// SaveToken upserts the calling admin's device token. Routed behind
// AdminOnly, so the verified claims are always present.
func (nc *NotificationController) SaveToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Token == "" {
		utils.Error(w, http.StatusBadRequest, "FCM token is required")
		return
	}

	if err := nc.Tokens.SaveToken(r.Context(), claims.UserID, in.Token); err != nil {
		utils.Error(w, http.StatusInternalServerError, "Server error saving FCM token")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "FCM token saved successfully"})
}
