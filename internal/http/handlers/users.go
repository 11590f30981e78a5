package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/mposter-be/internal/account"
	"github.com/hongminglow/mposter-be/internal/http/respond"
	"github.com/hongminglow/mposter-be/internal/models/dto"
)

// UserHandler serves profile reads and partial updates.
type UserHandler struct {
	accounts *account.Service
}

func NewUserHandler(accounts *account.Service) *UserHandler {
	return &UserHandler{accounts: accounts}
}

func (h *UserHandler) Register(r chi.Router) {
	r.Get("/users", h.handleList)
	r.Get("/user/{id}", h.handleGet)
	r.Put("/users/update/{id}", h.handleUpdate)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, profile)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := respond.Decode(r, &req); err != nil {
		badJSON(w)
		return
	}
	updated, err := h.accounts.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UpdateUserResponse{
		Message: "User updated successfully",
		User:    updated,
	})
}
