package httpx

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/auth"
	"github.com/ariefcatur/erp-lite/internal/users"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type UserService interface {
	List(ctx context.Context) ([]users.User, error)
	Get(ctx context.Context, id string) (users.User, error)
	Update(ctx context.Context, id string, req users.UpdateRequest) (users.User, error)
	Delete(ctx context.Context, id string) error
}

type UsersHandler struct {
	Service UserService
	Gate    *auth.Gate
	R       *Responder
}

func (h *UsersHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.Gate.Authenticate, h.Gate.RequireAdmin)
		r.Get("/users", h.list)
		r.Get("/users/{id}", h.get)
		r.Put("/users/{id}", h.update)
		r.Delete("/users/{id}", h.delete)
	})
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	us, err := h.Service.List(ctx)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, us)
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, u)
}

func (h *UsersHandler) update(w http.ResponseWriter, r *http.Request) {
	var req users.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.R.Error(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Service.Update(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, u)
}

func (h *UsersHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
