package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/mposter-be/internal/account"
	"github.com/hongminglow/mposter-be/internal/auth"
	"github.com/hongminglow/mposter-be/internal/http/respond"
	"github.com/hongminglow/mposter-be/internal/middleware"
	"github.com/hongminglow/mposter-be/internal/models/dto"
)

// AuthHandler owns the register, login and current-user endpoints.
type AuthHandler struct {
	accounts *account.Service
	tokens   *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts *account.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.With(middleware.RequireAuth(h.tokens)).Get("/me", h.handleMe)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := respond.Decode(r, &req); err != nil {
		badJSON(w)
		return
	}
	created, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, dto.RegisterResponse{
		Message:    "User registered successfully",
		StatusCode: http.StatusCreated,
		User:       created,
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		badJSON(w)
		return
	}
	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.LoginResponse{
		Message:    "Login successful",
		Token:      res.Token,
		StatusCode: http.StatusOK,
		User:       res.Profile,
	})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authorization token required")
		return
	}
	profile, err := h.accounts.Profile(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, profile)
}
