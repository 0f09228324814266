package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/imishab/track-me/internal/api/respond"
	"github.com/imishab/track-me/internal/auth"
	"github.com/imishab/track-me/internal/seed"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

const minPasswordLen = 8

// Signup creates an account, seeds the default habit presets, and returns a
// session token.
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentialsRequest true "Credentials"
// @Success 201 {object} sessionResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /api/v1/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Valid email required")
		return
	}
	if len(req.Password) < minPasswordLen {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to hash password")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Email, hash)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			respond.WriteError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
			return
		}
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to create account", err.Error())
		return
	}

	// New accounts start with the preset habits; a seeding failure is not
	// worth failing the signup over.
	if err := seed.Defaults(r.Context(), h.habits, user.ID); err != nil {
		h.logger.Warn("seed default habits failed", "user_id", user.ID, "error", err)
	}

	token, err := h.tokens.Generate(user.ID, user.Email)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to issue token")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

// Login authenticates an account and returns a session token.
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentialsRequest true "Credentials"
// @Success 200 {object} sessionResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, found, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Lookup failed", err.Error())
		return
	}
	if !found || !auth.CheckPassword(user.PasswordHash, req.Password) {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Email)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to issue token")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, sessionResponse{Token: token, User: user})
}
