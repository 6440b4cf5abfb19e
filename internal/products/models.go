package products

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/apperr"
	"time"
)

const (
	TypeRaw          = "raw"
	TypeFinished     = "finished"
	TypeSemiFinished = "semi-finished"
)

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	Price         float64   `json:"price"`
	Quantity      int       `json:"quantity"`
	Supplier      string    `json:"supplier"`
	Category      string    `json:"category"`
	Brand         string    `json:"brand"`
	BatchNumber   string    `json:"batchNumber"`
	ExpiryDate    time.Time `json:"expiryDate"`
	MinStockLevel int       `json:"minStockLevel"`
	Image         string    `json:"image"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Low reports whether on-hand stock is at or below the reorder threshold.
func (p Product) Low() bool { return p.Quantity <= p.MinStockLevel }

var ErrProductNotFound = apperr.New(apperr.KindNotFound, "PRODUCT_NOT_FOUND", "Product not found")

type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Insert(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id string) error
	LowStock(ctx context.Context) ([]Product, error)
}
