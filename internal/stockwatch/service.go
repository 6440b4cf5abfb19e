// Package stockwatch raises LowStock alerts when completed orders push a
// product to or below its reorder threshold, and on a periodic sweep.
package stockwatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	kafkax "github.com/ariefcatur/erp-lite/internal/kafka"
	"github.com/ariefcatur/erp-lite/internal/metrics"
	"github.com/ariefcatur/erp-lite/internal/orders"
	"github.com/ariefcatur/erp-lite/internal/products"
	"github.com/ariefcatur/erp-lite/internal/redisx"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"strconv"
	"time"
)

const (
	TriggerAdjustment = "adjustment"
	TriggerSweep      = "sweep"
)

type Catalog interface {
	Get(ctx context.Context, id string) (products.Product, error)
	LowStock(ctx context.Context) ([]products.Product, error)
}

// Marker claims a key for ttl and reports whether the caller was first.
type Marker interface {
	First(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type Service struct {
	Catalog     Catalog
	Marker      Marker
	Alerts      orders.Publisher
	Log         *logrus.Entry
	ServiceName string
}

// HandleStockAdjusted is the consumer handler for inventory.stock_adjusted.
func (s *Service) HandleStockAdjusted(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.WithError(err).WithField("offset", m.Offset).Warn("skipping undecodable message")
		return nil
	}
	if env.EventType != orders.EventStockAdjusted {
		return nil
	}

	first, err := s.Marker.First(ctx, fmt.Sprintf(redisx.KeyDedup, "stockwatch", env.EventID), redisx.TTLDedup)
	if err != nil {
		return fmt.Errorf("dedup: %w", err)
	}
	if !first {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.StockAdjustedPayload](env.Payload)
	if err != nil {
		s.Log.WithError(err).WithField("event_id", env.EventID).Warn("skipping bad payload")
		return nil
	}

	prod, err := s.Catalog.Get(ctx, p.ProductID)
	if errors.Is(err, products.ErrProductNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !prod.Low() {
		return nil
	}
	return s.raise(ctx, prod, TriggerAdjustment, env.TraceID)
}

// Sweep alerts on every product currently at or below its threshold.
func (s *Service) Sweep(ctx context.Context) error {
	low, err := s.Catalog.LowStock(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, p := range low {
		if err := s.raise(ctx, p, TriggerSweep, ""); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// raise publishes at most one alert per product per redisx.TTLAlert.
func (s *Service) raise(ctx context.Context, p products.Product, trigger, trace string) error {
	first, err := s.Marker.First(ctx, fmt.Sprintf(redisx.KeyLowStockAlert, p.ID), redisx.TTLAlert)
	if err != nil {
		return fmt.Errorf("alert throttle: %w", err)
	}
	if !first {
		return nil
	}

	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventLowStock,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       trace,
		CorrelationID: p.ID,
		Payload: kafkax.MustMarshal(orders.LowStockPayload{
			ProductID:     p.ID,
			Name:          p.Name,
			Quantity:      p.Quantity,
			MinStockLevel: p.MinStockLevel,
			Trigger:       trigger,
		}),
	}
	s.Alerts.Publish(orders.PartitionKey(p.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventLowStock)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
	metrics.LowStockAlert(trigger)
	s.Log.WithFields(logrus.Fields{
		"product_id": p.ID, "quantity": p.Quantity, "min_stock_level": p.MinStockLevel, "trigger": trigger,
	}).Warn("low stock")
	return nil
}
