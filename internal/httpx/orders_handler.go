package httpx

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/auth"
	"github.com/ariefcatur/erp-lite/internal/orders"
	"github.com/go-chi/chi/v5"
	"net/http"
	"strings"
	"time"
)

type OrderService interface {
	Create(ctx context.Context, userID string, req orders.CreateOrderRequest) (orders.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (orders.Order, error)
	ListForUser(ctx context.Context, userID string) ([]orders.Order, error)
	ListAll(ctx context.Context) ([]orders.OrderWithOwner, error)
	GetForUser(ctx context.Context, id, userID string) (orders.Order, error)
}

// IdempotencyStore remembers which order a client key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID, key string) (string, bool, error)
	Remember(ctx context.Context, userID, key, orderID string) error
}

type OrdersHandler struct {
	Service OrderService
	Idem    IdempotencyStore // optional
	Gate    *auth.Gate
	R       *Responder
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.Gate.Authenticate)
		r.Get("/orders", h.listMine)
		r.Post("/orders", h.createOrder)
		r.Get("/orders/{id}", h.getOrder)

		r.Group(func(r chi.Router) {
			r.Use(h.Gate.RequireAdmin)
			r.Get("/orders/all", h.listAll)
			r.Patch("/orders/{id}/status", h.updateStatus)
		})
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	var req orders.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.R.Error(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" && h.Idem != nil {
		// Redis is a shortcut only; on lookup failure the order is created normally
		if orderID, ok, err := h.Idem.Lookup(ctx, id.UserID, key); err == nil && ok {
			if o, err := h.Service.GetForUser(ctx, orderID, id.UserID); err == nil {
				w.Header().Set("Idempotent-Replayed", "true")
				h.R.JSON(w, http.StatusOK, o)
				return
			}
		} else if err != nil {
			h.R.log().WithError(err).Warn("idempotency lookup failed")
		}
	}

	o, err := h.Service.Create(ctx, id.UserID, req)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	if key != "" && h.Idem != nil {
		if err := h.Idem.Remember(ctx, id.UserID, key, o.ID); err != nil {
			h.R.log().WithError(err).WithField("order_id", o.ID).Warn("idempotency remember failed")
		}
	}
	h.R.JSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Service.ListForUser(ctx, id.UserID)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Service.ListAll(ctx)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Service.GetForUser(ctx, chi.URLParam(r, "id"), id.UserID)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		h.R.Error(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.R.Error(w, r, err)
		return
	}
	h.R.JSON(w, http.StatusOK, o)
}
