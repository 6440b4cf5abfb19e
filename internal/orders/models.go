package orders

import (
	"context"
	"time"
)

type Order struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	UserID      string    `json:"userId"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	TotalPrice  float64   `json:"totalPrice"`
	Status      Status    `json:"status"`
	OrderDate   time.Time `json:"orderDate"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Owner is the user joined onto admin listings; nil when the user is gone.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type OrderWithOwner struct {
	Order
	User *Owner `json:"user"`
}

// Stock is the part of a product the order workflow reads.
type Stock struct {
	ProductID string
	Name      string
	Quantity  int
}

// Store is the persistence the workflow needs. Methods called inside
// Transact run on the same transaction.
type Store interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error

	GetStock(ctx context.Context, productID string) (Stock, error)
	// DeductStock removes qty and returns what is left. It never drives
	// stock below zero.
	DeductStock(ctx context.Context, productID string, qty int) (int, error)

	// LockOrderDay serialises number assignment for one day prefix until the
	// surrounding transaction ends.
	LockOrderDay(ctx context.Context, prefix string) error
	LastOrderNumber(ctx context.Context, prefix string) (string, error)

	InsertOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, id string, forUpdate bool) (Order, error)
	GetOrderForUser(ctx context.Context, id, userID string) (Order, error)
	SetStatus(ctx context.Context, id string, s Status, at time.Time) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]OrderWithOwner, error)
}
