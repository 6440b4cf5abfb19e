package orders

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/erp-lite/internal/apperr"
	kafkax "github.com/ariefcatur/erp-lite/internal/kafka"
	"github.com/ariefcatur/erp-lite/internal/logging"
	"github.com/ariefcatur/erp-lite/internal/metrics"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"math"
	"strconv"
	"strings"
	"time"
)

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Publishers routes each event type to its topic. Nil entries are skipped.
type Publishers struct {
	Created       Publisher
	StatusChanged Publisher
	StockAdjusted Publisher
}

type Service struct {
	Store       Store
	Events      Publishers
	Log         *logrus.Entry
	ServiceName string
	Location    *time.Location   // date of order numbers; defaults to time.Local
	Now         func() time.Time // defaults to time.Now
}

// CreateOrderRequest is the client body. Pointers distinguish absent from
// zero.
type CreateOrderRequest struct {
	ProductID   *string  `json:"productId"`
	Quantity    *Numeric `json:"quantity"`
	UnitPrice   *Numeric `json:"unitPrice"`
	TotalPrice  *Numeric `json:"totalPrice"`
	ProductName *string  `json:"productName"`
}

type orderInput struct {
	productID   string
	productName string
	quantity    int
	unitPrice   float64
	totalPrice  float64
}

func (r CreateOrderRequest) validate() (orderInput, error) {
	var missing []string
	if r.ProductID == nil || strings.TrimSpace(*r.ProductID) == "" {
		missing = append(missing, "productId")
	}
	if r.Quantity.blank() {
		missing = append(missing, "quantity")
	}
	if r.UnitPrice.blank() {
		missing = append(missing, "unitPrice")
	}
	if r.TotalPrice.blank() {
		missing = append(missing, "totalPrice")
	}
	if r.ProductName == nil || strings.TrimSpace(*r.ProductName) == "" {
		missing = append(missing, "productName")
	}
	if len(missing) > 0 {
		e := apperr.Validation("all fields are required").WithDetails("missing", missing)
		return orderInput{}, e
	}

	var bad fieldErrors
	q, ok := r.Quantity.Float()
	if !ok || q <= 0 || q != math.Trunc(q) || q > math.MaxInt32 {
		bad.add("quantity", "quantity must be a positive integer")
	}
	unit, ok := r.UnitPrice.Float()
	if !ok || unit < 0 {
		bad.add("unitPrice", "unit price must be a non-negative number")
	}
	total, ok := r.TotalPrice.Float()
	if !ok || total < 0 {
		bad.add("totalPrice", "total price must be a non-negative number")
	}
	if err := bad.err(); err != nil {
		return orderInput{}, err
	}

	return orderInput{
		productID:   strings.TrimSpace(*r.ProductID),
		productName: strings.TrimSpace(*r.ProductName),
		quantity:    int(q),
		unitPrice:   unit,
		totalPrice:  total,
	}, nil
}

type fieldErrors struct {
	first  string
	fields map[string]string
}

func (f *fieldErrors) add(field, msg string) {
	if f.fields == nil {
		f.first = msg
		f.fields = make(map[string]string)
	}
	f.fields[field] = msg
}

// err reports the first message when a single field failed.
func (f *fieldErrors) err() error {
	if len(f.fields) == 0 {
		return nil
	}
	msg := f.first
	if len(f.fields) > 1 {
		msg = "invalid order fields"
	}
	return apperr.Validation(msg).WithDetails("fields", f.fields)
}

// Create validates the request against current stock and stores a pending
// order with the next number of the day. Stock is not touched.
func (s *Service) Create(ctx context.Context, userID string, req CreateOrderRequest) (Order, error) {
	in, err := req.validate()
	if err != nil {
		return Order{}, err
	}
	if _, err := uuid.Parse(in.productID); err != nil {
		return Order{}, ErrProductNotFound.WithDetails("productId", in.productID)
	}

	now := s.now()
	var o Order
	err = s.Store.Transact(ctx, func(ctx context.Context) error {
		stock, err := s.Store.GetStock(ctx, in.productID)
		if err != nil {
			return err
		}
		if stock.Quantity < in.quantity {
			e := ErrInsufficientStock.
				WithDetails("requested", in.quantity).
				WithDetails("available", stock.Quantity)
			e.Message = fmt.Sprintf("Requested %d units but only %d available", in.quantity, stock.Quantity)
			return e
		}

		prefix := DayPrefix(now)
		if err := s.Store.LockOrderDay(ctx, prefix); err != nil {
			return err
		}
		last, err := s.Store.LastOrderNumber(ctx, prefix)
		if err != nil {
			return err
		}
		number, err := NextOrderNumber(prefix, last)
		if err != nil {
			return err
		}

		o = Order{
			ID:          uuid.NewString(),
			OrderNumber: number,
			UserID:      userID,
			ProductID:   in.productID,
			ProductName: in.productName,
			Quantity:    in.quantity,
			UnitPrice:   in.unitPrice,
			TotalPrice:  in.totalPrice,
			Status:      StatusPending,
			OrderDate:   now,
			UpdatedAt:   now,
		}
		return s.Store.InsertOrder(ctx, o)
	})
	if err != nil {
		return Order{}, err
	}

	metrics.OrderCreated()
	s.log(ctx).WithFields(logrus.Fields{
		"order_id": o.ID, "order_number": o.OrderNumber, "product_id": o.ProductID, "qty": o.Quantity,
	}).Info("order created")

	s.publish(ctx, s.Events.Created, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		ProductID:   o.ProductID,
		Quantity:    o.Quantity,
		UnitPrice:   o.UnitPrice,
		TotalPrice:  o.TotalPrice,
	})
	return o, nil
}

// UpdateStatus overwrites the status of an order. Moving into completed from
// any other status deducts the order quantity from stock in the same
// transaction, so repeating "completed" never deducts twice. Leaving
// completed does not restock: completed, cancelled, completed deducts the
// quantity a second time.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (Order, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return Order{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return Order{}, ErrOrderNotFound
	}

	now := s.now()
	var (
		o         Order
		prev      Status
		deducted  bool
		remaining int
	)
	err = s.Store.Transact(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.Store.GetOrder(ctx, id, true)
		if err != nil {
			return err
		}
		prev = o.Status

		if err := s.Store.SetStatus(ctx, id, next, now); err != nil {
			return err
		}
		o.Status = next
		o.UpdatedAt = now

		if !next.DeductsStock() || prev.DeductsStock() {
			return nil
		}
		remaining, err = s.Store.DeductStock(ctx, o.ProductID, o.Quantity)
		if errors.Is(err, ErrProductNotFound) {
			s.log(ctx).WithFields(logrus.Fields{"order_id": o.ID, "product_id": o.ProductID}).
				Warn("completed order references a deleted product, stock untouched")
			return nil
		}
		if err != nil {
			return err
		}
		deducted = true
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	metrics.StatusTransition(string(prev), string(next))
	entry := s.log(ctx).WithFields(logrus.Fields{"order_id": o.ID, "from": prev, "to": next})
	if deducted {
		metrics.StockDeducted(o.Quantity)
		entry = entry.WithFields(logrus.Fields{"product_id": o.ProductID, "deducted": o.Quantity, "remaining": remaining})
	}
	entry.Info("order status updated")

	s.publish(ctx, s.Events.StatusChanged, EventOrderStatusChanged, o.ID, OrderStatusChangedPayload{
		OrderID: o.ID, OrderNumber: o.OrderNumber, From: prev, To: next,
	})
	if deducted {
		s.publish(ctx, s.Events.StockAdjusted, EventStockAdjusted, o.ID, StockAdjustedPayload{
			OrderID: o.ID, ProductID: o.ProductID, Delta: -o.Quantity, Remaining: remaining,
		})
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return s.Store.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]OrderWithOwner, error) {
	return s.Store.ListAll(ctx)
}

// GetForUser only returns orders owned by userID; anything else is not found.
func (s *Service) GetForUser(ctx context.Context, id, userID string) (Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Order{}, ErrOrderNotFound
	}
	return s.Store.GetOrderForUser(ctx, id, userID)
}

func (s *Service) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (s *Service) log(ctx context.Context) *logrus.Entry {
	base := s.Log
	if base == nil {
		base = logrus.NewEntry(logrus.StandardLogger())
	}
	return logging.FromContext(ctx, base)
}

func (s *Service) publish(ctx context.Context, p Publisher, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
}
