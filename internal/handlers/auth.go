package handlers

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/detailing-desk/internal/auth"
	"github.com/ukydev/detailing-desk/internal/db"
	"github.com/ukydev/detailing-desk/internal/middleware"
	"github.com/ukydev/detailing-desk/internal/models"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Login handles staff sign-in
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var loginReq models.LoginRequest
	if err := readJSON(r, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(loginReq.Email) == "" || loginReq.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	response, err := h.authService.SignIn(r.Context(), h.userCollection, loginReq.Email, loginReq.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail):
			http.Error(w, auth.LoginMessage(err), http.StatusBadRequest)
		case errors.Is(err, auth.ErrUserDisabled), errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrWrongPassword):
			http.Error(w, auth.LoginMessage(err), http.StatusUnauthorized)
		default:
			log.WithError(err).Error("Login failed")
			http.Error(w, auth.LoginMessage(err), http.StatusInternalServerError)
		}
		return
	}

	log.WithField("user_id", response.User.ID).Info("Staff signed in")
	writeJSON(w, http.StatusOK, response)
}

// Logout revokes the presented token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	h.authService.Revoke(claims)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// Me returns the signed-in user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
