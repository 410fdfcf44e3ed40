package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"avado-backend/models"
	"avado-backend/utils"
)

// Key type for context
type contextKey string

const (
	ownerContextKey  = contextKey("owner")
	claimsContextKey = contextKey("claims")
)

// UserFinder is the slice of the user store the resolver needs: enough to
// tell whether a token still points at a real account.
type UserFinder interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// OwnerFromContext returns the Owner resolved for the request. The second
// return is false only when UserOrGuest did not run.
func OwnerFromContext(ctx context.Context) (models.Owner, bool) {
	owner, ok := ctx.Value(ownerContextKey).(models.Owner)
	return owner, ok
}

// ClaimsFromContext returns the verified admin claims set by AdminOnly.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*utils.Claims)
	return claims, ok
}

// UserOrGuest resolves every request to exactly one Owner. A verifiable
// session cookie pointing at an existing account wins; anything else falls
// back to the guest session, minting a fresh unpredictable guest id (and
// setting its 30-day cookie) when none exists. Token failures are silent:
// a malformed or expired token is treated the same as no token at all.
func UserOrGuest(users UserFinder, secret []byte, prod bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(utils.SessionCookie); err == nil {
				if claims, err := utils.ParseJWT(secret, cookie.Value); err == nil {
					exists, err := users.Exists(r.Context(), claims.UserID)
					if err != nil {
						utils.Error(w, http.StatusInternalServerError, "Server error")
						return
					}
					if exists {
						owner := models.UserOwner(claims.UserID, claims.Role)
						next.ServeHTTP(w, r.WithContext(withOwner(r.Context(), owner)))
						return
					}
				}
			}

			guestID := ""
			if cookie, err := r.Cookie(utils.GuestCookie); err == nil && cookie.Value != "" {
				guestID = cookie.Value
			}
			if guestID == "" {
				guestID = "guest_" + uuid.NewString()
				utils.SetGuestCookie(w, guestID, prod)
				log.Debug().Str("guest_id", guestID).Msg("new guest session created")
			}

			owner := models.GuestOwner(guestID)
			next.ServeHTTP(w, r.WithContext(withOwner(r.Context(), owner)))
		})
	}
}

// AdminOnly guards staff endpoints. Unlike UserOrGuest there is no guest
// fallback: a missing or invalid token is 401, a valid token without the
// admin role is 403.
func AdminOnly(secret []byte) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(utils.SessionCookie)
			if err != nil || cookie.Value == "" {
				utils.Error(w, http.StatusUnauthorized, "Unauthorized: No token found")
				return
			}

			claims, err := utils.ParseJWT(secret, cookie.Value)
			if err != nil {
				utils.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if claims.Role != models.RoleAdmin {
				utils.Error(w, http.StatusForbidden, "Access denied: Admins only")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func withOwner(ctx context.Context, owner models.Owner) context.Context {
	return context.WithValue(ctx, ownerContextKey, owner)
}
