package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/imishab/track-me/internal/api/respond"
	"github.com/imishab/track-me/internal/auth"
)

type createCategoryRequest struct {
	Name string `json:"name"`
}

// ListCategories returns the user's categories.
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/categories [get]
// @Security BearerAuth
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	list, err := h.habits.ListCategories(r.Context(), userID)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to list categories", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"categories": list})
}

// CreateCategory adds a category.
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param body body createCategoryRequest true "Category"
// @Success 201 {object} habits.Category
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/categories [post]
// @Security BearerAuth
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "name required")
		return
	}

	created, err := h.habits.CreateCategory(r.Context(), userID, req.Name)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to create category", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, created)
}

// DeleteCategory removes a category; its habits become uncategorized.
// @Summary Delete a category
// @Tags categories
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/categories/{id} [delete]
// @Security BearerAuth
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	categoryID := chi.URLParam(r, "id")

	if err := h.habits.DeleteCategory(r.Context(), userID, categoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "Failed to delete category", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"ok": true})
}
