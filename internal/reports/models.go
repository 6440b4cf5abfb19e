// Package reports aggregates orders and products for the dashboard charts.
// Results are computed on every call.
package reports

import "context"

// Group keys are rendered under "_id", the shape the dashboard charts read.

type DayKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type MonthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type DailySales struct {
	ID         DayKey  `json:"_id"`
	TotalSales float64 `json:"totalSales"`
	Count      int     `json:"count"`
}

type CategoryInventory struct {
	ID            string  `json:"_id"`
	TotalItems    int     `json:"totalItems"`
	TotalQuantity int     `json:"totalQuantity"`
	TotalValue    float64 `json:"totalValue"`
}

type LowStockItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"minStockLevel"`
}

type MonthlySales struct {
	ID         MonthKey `json:"_id"`
	TotalSales float64  `json:"totalSales"`
}

type SalesVsPurchase struct {
	Sales     []MonthlySales `json:"sales"`
	Purchases []MonthlySales `json:"purchases"`
}

// Source runs the aggregations. zone is an IANA name, or "" for the
// database session zone.
type Source interface {
	SalesByDay(ctx context.Context, zone string) ([]DailySales, error)
	InventoryByCategory(ctx context.Context) ([]CategoryInventory, error)
	LowStock(ctx context.Context) ([]LowStockItem, error)
	SalesByMonth(ctx context.Context, zone string) ([]MonthlySales, error)
}
