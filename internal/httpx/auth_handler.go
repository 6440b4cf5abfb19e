package httpx

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/auth"
	"github.com/ariefcatur/erp-lite/internal/users"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type AccountService interface {
	Register(ctx context.Context, req users.RegisterRequest) (users.User, error)
	Login(ctx context.Context, req users.LoginRequest) (users.LoginResult, error)
	Me(ctx context.Context, id auth.Identity) (users.User, error)
}

type AuthHandler struct {
	Service AccountService
	Gate    *auth.Gate
	Limiter *auth.RateLimiter // optional, guards login and register
	R       *Responder
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.Limiter != nil {
			r.Use(h.Limiter.Handler)
		}
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
	})
	r.With(h.Gate.Authenticate).Get("/auth/me", h.me)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.R.Error(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Service.Register(ctx, req)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully", "user": u})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req users.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.R.Error(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Service.Login(ctx, req)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, res)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Service.Me(ctx, id)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, u)
}
