package handlers

import (
	"encoding/json"
	"net/http"

	"closercollege/internal/auth"
	"closercollege/internal/gateway/util"
	"closercollege/internal/shared"
)

// contextKey is the private type for request-context values set by the
// gateway middleware.
type contextKey string

// UserContextKey holds the authenticated *shared.User.
const UserContextKey contextKey = "user"

// CurrentUser returns the authenticated account injected by the auth
// middleware, or nil for unauthenticated requests.
func CurrentUser(r *http.Request) *shared.User {
	user, _ := r.Context().Value(UserContextKey).(*shared.User)
	return user
}

// AuthHandler exposes the auth service over REST.
type AuthHandler struct {
	Auth *auth.Service
}

// RESTLoginRequest mirrors the JSON input for POST /auth/login
type RESTLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RESTChangePasswordRequest mirrors the JSON input for POST /auth/change-password
type RESTChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var reqBody RESTLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := h.Auth.Login(r.Context(), reqBody.Email, reqBody.Password)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := util.ExtractToken(r)
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Auth.Logout(r.Context(), token); err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "logout successful",
	})
}

// Validate handles GET /auth/validate
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, CurrentUser(r))
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	var reqBody RESTChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), user.ID, reqBody.OldPassword, reqBody.NewPassword); err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "password changed successfully",
	})
}
