package httpx

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/auth"
	"github.com/ariefcatur/erp-lite/internal/products"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type ProductService interface {
	List(ctx context.Context) ([]products.Product, error)
	Get(ctx context.Context, id string) (products.Product, error)
	Create(ctx context.Context, in products.Input) (products.Product, error)
	Update(ctx context.Context, id string, patch products.Patch) (products.Product, error)
	Delete(ctx context.Context, id string) error
}

type ProductsHandler struct {
	Service ProductService
	Gate    *auth.Gate
	R       *Responder
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.Gate.Authenticate)
		r.Get("/products", h.list)
		r.Get("/products/{id}", h.get)

		r.Group(func(r chi.Router) {
			r.Use(h.Gate.RequireAdmin)
			r.Post("/products", h.create)
			r.Put("/products/{id}", h.update)
			r.Patch("/products/{id}", h.update)
			r.Delete("/products/{id}", h.delete)
		})
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Service.List(ctx)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in products.Input
	if err := decodeJSON(r, &in); err != nil {
		h.R.Error(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Service.Create(ctx, in)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch products.Patch
	if err := decodeJSON(r, &patch); err != nil {
		h.R.Error(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Service.Update(ctx, chi.URLParam(r, "id"), patch)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}
