package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"avado-backend/models"
	"avado-backend/store"
	"avado-backend/utils"
)

// UserStore is the slice of the data layer the auth handlers need.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByLogin(ctx context.Context, login string) (models.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email, phone, passwordHash string) (int64, error)
	UpdateAccount(ctx context.Context, id int64, email, phone, passwordHash string) (models.User, error)
}

// UserController handles signup, login, and account management.
type UserController struct {
	Users     UserStore
	JWTSecret []byte
	Prod      bool
}

// NewUserController creates a new UserController
func NewUserController(users UserStore, secret []byte, prod bool) *UserController {
	return &UserController{Users: users, JWTSecret: secret, Prod: prod}
}

type signupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// Signup registers a new account and logs it in immediately.
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	var in signupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if in.Email == "" || in.Password == "" {
		utils.Error(w, http.StatusBadRequest, "Email & password required")
		return
	}

	taken, err := uc.Users.EmailTaken(r.Context(), in.Email)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	if taken {
		utils.Error(w, http.StatusBadRequest, "Email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	id, err := uc.Users.Create(r.Context(), in.Email, in.Phone, string(hash))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	uc.issueSession(w, id, models.RoleCustomer)
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Signup successful",
		"user":    map[string]interface{}{"id": id, "email": in.Email, "phone": in.Phone},
	})
}

type loginInput struct {
	LoginInput string `json:"loginInput"` // email or phone
	Password   string `json:"password"`
}

// Login authenticates by email or phone.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if in.LoginInput == "" || in.Password == "" {
		utils.Error(w, http.StatusBadRequest, "Input & password required")
		return
	}

	user, err := uc.Users.GetByLogin(r.Context(), in.LoginInput)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusBadRequest, "User not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid password")
		return
	}

	uc.issueSession(w, user.ID, user.Role)
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    map[string]interface{}{"id": user.ID, "email": user.Email, "phone": user.Phone},
	})
}

// CurrentUser returns the account behind the session cookie.
func (uc *UserController) CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := uc.verifiedClaims(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := uc.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "User not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Logout clears the session cookie.
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	utils.ClearSessionCookie(w, uc.Prod)
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

type accountUpdateInput struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UpdateAccount partially updates the caller's email, phone, or password.
func (uc *UserController) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := uc.verifiedClaims(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in accountUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid input")
		return
	}

	hash := ""
	if in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "Server error")
			return
		}
		hash = string(hashed)
	}

	user, err := uc.Users.UpdateAccount(r.Context(), claims.UserID, in.Email, in.Phone, hash)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"message": "Account updated", "user": user})
}

func (uc *UserController) verifiedClaims(r *http.Request) (*utils.Claims, bool) {
	cookie, err := r.Cookie(utils.SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := utils.ParseJWT(uc.JWTSecret, cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func (uc *UserController) issueSession(w http.ResponseWriter, userID int64, role string) {
	token, err := utils.GenerateJWT(uc.JWTSecret, userID, role)
	if err != nil {
		return
	}
	utils.SetSessionCookie(w, token, uc.Prod)
}
