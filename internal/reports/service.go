package reports

import (
	"context"
	"time"
)

type Service struct {
	Source Source
	// Location groups orders by calendar day; nil or time.Local defers to
	// the database session zone.
	Location *time.Location
}

func (s *Service) Sales(ctx context.Context) ([]DailySales, error) {
	out, err := s.Source.SalesByDay(ctx, s.zone())
	return nonNil(out), err
}

func (s *Service) Inventory(ctx context.Context) ([]CategoryInventory, error) {
	out, err := s.Source.InventoryByCategory(ctx)
	return nonNil(out), err
}

func (s *Service) LowStock(ctx context.Context) ([]LowStockItem, error) {
	out, err := s.Source.LowStock(ctx)
	return nonNil(out), err
}

// SalesVsPurchase pairs monthly sales with purchases. No purchase data is
// recorded yet, so that side is always empty.
func (s *Service) SalesVsPurchase(ctx context.Context) (SalesVsPurchase, error) {
	sales, err := s.Source.SalesByMonth(ctx, s.zone())
	if err != nil {
		return SalesVsPurchase{}, err
	}
	return SalesVsPurchase{Sales: nonNil(sales), Purchases: []MonthlySales{}}, nil
}

func (s *Service) zone() string {
	if s.Location == nil || s.Location == time.Local {
		return ""
	}
	return s.Location.String()
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
