package httpx

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/auth"
	"github.com/ariefcatur/erp-lite/internal/reports"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type ReportService interface {
	Sales(ctx context.Context) ([]reports.DailySales, error)
	Inventory(ctx context.Context) ([]reports.CategoryInventory, error)
	LowStock(ctx context.Context) ([]reports.LowStockItem, error)
	SalesVsPurchase(ctx context.Context) (reports.SalesVsPurchase, error)
}

type ReportsHandler struct {
	Service ReportService
	Gate    *auth.Gate
	R       *Responder
}

func (h *ReportsHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.Gate.Authenticate)
		r.Get("/reports/sales", serveReport(h.R, h.Service.Sales))
		r.Get("/reports/inventory", serveReport(h.R, h.Service.Inventory))
		r.Get("/reports/low-stock", serveReport(h.R, h.Service.LowStock))
		r.Get("/reports/sales-vs-purchase", serveReport(h.R, h.Service.SalesVsPurchase))
	})
}

func serveReport[T any](rs *Responder, run func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		out, err := run(ctx)
		if err != nil {
			rs.Error(w, r, err)
			return
		}
		rs.JSON(w, http.StatusOK, out)
	}
}
