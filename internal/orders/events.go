package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventStockAdjusted      = "StockAdjusted"
	EventLowStock           = "LowStock"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id, or product id for LowStock
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     string  `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	UserID      string  `json:"user_id"`
	ProductID   string  `json:"product_id"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type OrderStatusChangedPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	From        Status `json:"from"`
	To          Status `json:"to"`
}

type StockAdjustedPayload struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"` // negative on deduction
	Remaining int    `json:"remaining"`
}

type LowStockPayload struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level"`
	Trigger       string `json:"trigger"` // "adjustment" | "sweep"
}
