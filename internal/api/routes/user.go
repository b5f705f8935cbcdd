package routes

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"Connector/internal/core/users"
)

// UserHandler serves public author profiles
type UserHandler struct {
	userService users.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService users.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UserRoutes returns user-related routes, mounted at /api/users
func UserRoutes(service users.UserService) chi.Router {
	h := NewUserHandler(service)
	r := chi.NewRouter()

	r.Get("/{id}", h.GetProfile)

	return r
}

// GetProfile handles GET /api/users/{id}
// Email is never exposed; the response carries only display fields.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, users.ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Failed to get user profile: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"id":        user.ID,
		"name":      user.Name,
		"avatar":    user.Avatar,
		"createdAt": user.CreatedAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode profile response: %v", err)
	}
}
