package products

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"time"
)

type Service struct {
	Store Store
	Log   *logrus.Entry
	Now   func() time.Time
}

// List returns every product, newest first.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.Store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Product{}, ErrProductNotFound
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	if err := in.validate(); err != nil {
		return Product{}, err
	}
	now := s.now()
	p := Product{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	in.apply(&p)
	if err := s.Store.Insert(ctx, p); err != nil {
		return Product{}, err
	}
	s.log(ctx).WithFields(logrus.Fields{"product_id": p.ID, "name": p.Name}).Info("product created")
	return p, nil
}

// Update merges patch onto the stored product and validates the result as a
// whole.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	in := patch.merge(p)
	if err := in.validate(); err != nil {
		return Product{}, err
	}
	in.apply(&p)
	p.UpdatedAt = s.now()
	if err := s.Store.Update(ctx, p); err != nil {
		return Product{}, err
	}
	s.log(ctx).WithField("product_id", p.ID).Info("product updated")
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrProductNotFound
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.log(ctx).WithField("product_id", id).Info("product deleted")
	return nil
}

func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	return s.Store.LowStock(ctx)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) log(ctx context.Context) *logrus.Entry {
	base := s.Log
	if base == nil {
		base = logrus.NewEntry(logrus.StandardLogger())
	}
	return logging.FromContext(ctx, base)
}
