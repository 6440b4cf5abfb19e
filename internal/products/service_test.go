package products

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/erp-lite/internal/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sort"
	"sync"
	"testing"
	"time"
)

type memStore struct {
	mu    sync.Mutex
	items map[string]Product
}

func newMemStore() *memStore { return &memStore{items: map[string]Product{}} }

func (m *memStore) sorted(keep func(Product) bool) []Product {
	out := []Product{}
	for _, p := range m.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) List(context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(Product) bool { return true }), nil
}

func (m *memStore) LowStock(context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(Product.Low), nil
}

func (m *memStore) Get(_ context.Context, id string) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (m *memStore) Insert(_ context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[p.ID] = p
	return nil
}

func (m *memStore) Update(_ context.Context, p Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return ErrProductNotFound
	}
	m.items[p.ID] = p
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrProductNotFound
	}
	delete(m.items, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func validInput() Input {
	return Input{
		Name:          " Steel Rod ",
		Type:          "Raw",
		Price:         ptr(12.5),
		Quantity:      ptr(10),
		Supplier:      "Acme",
		Category:      "Metals",
		Brand:         "Acme",
		BatchNumber:   "B-001",
		ExpiryDate:    &Date{time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		MinStockLevel: ptr(3),
	}
}

func newService() *Service {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Service{
		Store: newMemStore(),
		Now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
	}
}

func TestCreateNormalizesAndStores(t *testing.T) {
	s := newService()
	p, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "Steel Rod", p.Name)
	assert.Equal(t, TypeRaw, p.Type)
	assert.Equal(t, 10, p.Quantity)

	got, err := s.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestCreateReportsEveryMissingField(t *testing.T) {
	s := newService()
	in := validInput()
	in.Quantity = nil
	in.Supplier = ""
	in.ExpiryDate = nil

	_, err := s.Create(context.Background(), in)
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, []string{"expiryDate", "quantity", "supplier"}, ae.Details["missing"])
}

func TestCreateRejectsBadValues(t *testing.T) {
	s := newService()
	in := validInput()
	in.Type = "liquid"
	in.Price = ptr(-1.0)
	in.MinStockLevel = ptr(-2)

	_, err := s.Create(context.Background(), in)
	require.Error(t, err)
	fields, ok := apperr.From(err).Details["fields"].(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "minStockLevel")
}

func TestUpdateMergesPatch(t *testing.T) {
	s := newService()
	p, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)

	got, err := s.Update(context.Background(), p.ID, Patch{Price: ptr(20.0), Category: ptr("Alloys")})
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Price)
	assert.Equal(t, "Alloys", got.Category)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Quantity, got.Quantity)
	assert.True(t, got.UpdatedAt.After(p.UpdatedAt))
}

func TestUpdateRevalidatesMergedProduct(t *testing.T) {
	s := newService()
	p, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = s.Update(context.Background(), p.ID, Patch{Quantity: ptr(-5), Name: ptr("")})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	stored, err := s.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Quantity)
}

func TestDeleteAndNotFound(t *testing.T) {
	s := newService()
	p, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), p.ID))
	_, err = s.Get(context.Background(), p.ID)
	assert.True(t, errors.Is(err, ErrProductNotFound))

	assert.True(t, errors.Is(s.Delete(context.Background(), uuid.NewString()), ErrProductNotFound))
	_, err = s.Get(context.Background(), "bogus")
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestListNewestFirstAndLowStock(t *testing.T) {
	s := newService()
	first, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)

	low := validInput()
	low.Name = "Bolt"
	low.Quantity = ptr(3)
	second, err := s.Create(context.Background(), low)
	require.NoError(t, err)

	all, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	lows, err := s.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, lows, 1)
	assert.Equal(t, "Bolt", lows[0].Name)
}

func TestDateAcceptsCalendarAndTimestamp(t *testing.T) {
	var body struct {
		A Date `json:"a"`
		B Date `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2026-03-01","b":"2026-03-01T10:00:00+07:00"}`), &body))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), body.A.Time)
	assert.Equal(t, time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC), body.B.Time)

	var bad struct {
		A Date `json:"a"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"a":"March 1st"}`), &bad))
}

func TestCreateFromJSONReportsEveryBadField(t *testing.T) {
	s := newService()
	body := `{"name":"Steel Rod","type":"raw","price":"x","quantity":2.5,"category":"Metals",
		"brand":"Acme","batchNumber":"B-001","expiryDate":"soon","minStockLevel":3}`

	var in Input
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	_, err := s.Create(context.Background(), in)
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindValidation, ae.Kind)

	fields, ok := ae.Details["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a number", fields["price"])
	assert.Equal(t, "must be an integer", fields["quantity"])
	assert.Equal(t, errBadDate.Error(), fields["expiryDate"])
	assert.Contains(t, fields, "supplier")
	assert.Len(t, fields, 4)
	assert.Equal(t, []string{"supplier"}, ae.Details["missing"])
}

func TestUpdateFromJSONReportsBadField(t *testing.T) {
	s := newService()
	p, err := s.Create(context.Background(), validInput())
	require.NoError(t, err)

	var patch Patch
	require.NoError(t, json.Unmarshal([]byte(`{"price":"cheap","category":"Alloys"}`), &patch))
	require.NotNil(t, patch.Category)

	_, err = s.Update(context.Background(), p.ID, patch)
	require.Error(t, err)
	fields := apperr.From(err).Details["fields"].(map[string]string)
	assert.Equal(t, map[string]string{"price": "must be a number"}, fields)

	stored, err := s.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Price, stored.Price)
	assert.Equal(t, "Metals", stored.Category)
}

func TestPriceKeepsFullPrecision(t *testing.T) {
	s := newService()
	in := validInput()
	in.Price = ptr(19.999)

	p, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	got, err := s.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 19.999, got.Price)
}
