package utils

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Claims represents the JWT claims carried in the session cookie.
type Claims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

const (
	// SessionCookie is the signed credential cookie name.
	SessionCookie = "token"
	// GuestCookie is the opaque guest-session cookie name.
	GuestCookie = "guest_session"

	sessionTTL = 7 * 24 * time.Hour
	guestTTL   = 30 * 24 * time.Hour
)

// GenerateJWT signs a 7-day session token for a user.
func GenerateJWT(secret []byte, userID int64, role string) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(sessionTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseJWT verifies a session token and returns its claims. Any parse or
// signature failure is returned as-is; callers decide whether that means
// "fall back to guest" or 401.
func ParseJWT(secret []byte, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.NewValidationError("invalid token", jwt.ValidationErrorSignatureInvalid)
	}
	return claims, nil
}

// SetSessionCookie attaches a 7-day httpOnly session cookie. In production
// the cookie is Secure with SameSite=None so it survives the cross-site
// frontend deployment; locally Lax keeps plain-HTTP testing working.
func SetSessionCookie(w http.ResponseWriter, token string, prod bool) {
	http.SetCookie(w, hardenedCookie(SessionCookie, token, sessionTTL, prod))
}

// SetGuestCookie attaches the 30-day guest-session cookie.
func SetGuestCookie(w http.ResponseWriter, id string, prod bool) {
	http.SetCookie(w, hardenedCookie(GuestCookie, id, guestTTL, prod))
}

// ClearSessionCookie expires the session cookie on logout.
func ClearSessionCookie(w http.ResponseWriter, prod bool) {
	c := hardenedCookie(SessionCookie, "", 0, prod)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func hardenedCookie(name, value string, ttl time.Duration, prod bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(ttl / time.Second),
		SameSite: http.SameSiteLaxMode,
	}
	if prod {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
