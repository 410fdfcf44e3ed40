package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"avado-backend/models"
	"avado-backend/utils"
)

var testSecret = []byte("test-secret")

type fakeUsers struct {
	existing map[int64]bool
}

func (f fakeUsers) Exists(_ context.Context, id int64) (bool, error) {
	return f.existing[id], nil
}

func resolveOwner(t *testing.T, users fakeUsers, cookies ...*http.Cookie) (models.Owner, *httptest.ResponseRecorder) {
	t.Helper()
	var captured models.Owner
	handler := UserOrGuest(users, testSecret, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := OwnerFromContext(r.Context())
		require.True(t, ok)
		captured = owner
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return captured, rec
}

func guestCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == utils.GuestCookie {
			return c
		}
	}
	return nil
}

func TestResolvesFreshGuest(t *testing.T) {
	owner, rec := resolveOwner(t, fakeUsers{})

	require.Equal(t, models.OwnerGuest, owner.Kind)
	require.NotEmpty(t, owner.GuestID)

	c := guestCookieFrom(rec)
	require.NotNil(t, c, "a new guest id must be set as a cookie")
	require.Equal(t, owner.GuestID, c.Value)
	require.True(t, c.HttpOnly)
	require.Equal(t, 30*24*60*60, c.MaxAge)
}

func TestGuestIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		owner, _ := resolveOwner(t, fakeUsers{})
		require.False(t, seen[owner.GuestID], "guest ids must never repeat")
		seen[owner.GuestID] = true
	}
}

func TestKeepsExistingGuestCookie(t *testing.T) {
	owner, rec := resolveOwner(t, fakeUsers{}, &http.Cookie{Name: utils.GuestCookie, Value: "guest_abc"})

	require.Equal(t, models.GuestOwner("guest_abc"), owner)
	require.Nil(t, guestCookieFrom(rec), "an existing guest id must not be reissued")
}

func TestResolvesAuthenticatedUser(t *testing.T) {
	token, err := utils.GenerateJWT(testSecret, 7, models.RoleCustomer)
	require.NoError(t, err)

	owner, _ := resolveOwner(t, fakeUsers{existing: map[int64]bool{7: true}},
		&http.Cookie{Name: utils.SessionCookie, Value: token})

	require.Equal(t, models.OwnerUser, owner.Kind)
	require.Equal(t, int64(7), owner.UserID)
	require.Equal(t, models.RoleCustomer, owner.Role)
}

func TestInvalidTokenFallsBackToGuest(t *testing.T) {
	owner, rec := resolveOwner(t, fakeUsers{},
		&http.Cookie{Name: utils.SessionCookie, Value: "not-a-jwt"})

	require.Equal(t, models.OwnerGuest, owner.Kind)
	require.Equal(t, http.StatusOK, rec.Code, "token failure must not surface to the caller")
}

func TestTokenForDeletedUserFallsBackToGuest(t *testing.T) {
	token, err := utils.GenerateJWT(testSecret, 99, models.RoleCustomer)
	require.NoError(t, err)

	owner, _ := resolveOwner(t, fakeUsers{existing: map[int64]bool{}},
		&http.Cookie{Name: utils.SessionCookie, Value: token})

	require.Equal(t, models.OwnerGuest, owner.Kind)
}

func TestWrongSigningSecretFallsBackToGuest(t *testing.T) {
	token, err := utils.GenerateJWT([]byte("other-secret"), 7, models.RoleCustomer)
	require.NoError(t, err)

	owner, _ := resolveOwner(t, fakeUsers{existing: map[int64]bool{7: true}},
		&http.Cookie{Name: utils.SessionCookie, Value: token})

	require.Equal(t, models.OwnerGuest, owner.Kind)
}

func adminRequest(t *testing.T, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	handler := AdminOnly(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/checkout/admin/1/status", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAdminOnly(t *testing.T) {
	t.Run("no token -> 401", func(t *testing.T) {
		rec := adminRequest(t)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token -> 401", func(t *testing.T) {
		rec := adminRequest(t, &http.Cookie{Name: utils.SessionCookie, Value: "junk"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("customer role -> 403", func(t *testing.T) {
		token, err := utils.GenerateJWT(testSecret, 7, models.RoleCustomer)
		require.NoError(t, err)
		rec := adminRequest(t, &http.Cookie{Name: utils.SessionCookie, Value: token})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin role -> ok", func(t *testing.T) {
		token, err := utils.GenerateJWT(testSecret, 1, models.RoleAdmin)
		require.NoError(t, err)
		rec := adminRequest(t, &http.Cookie{Name: utils.SessionCookie, Value: token})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
