package orders

import (
	"context"
	kafkago "github.com/segmentio/kafka-go"
	"sort"
	"strings"
	"sync"
	"time"
)

type fakeProduct struct {
	name     string
	quantity int
}

// memStore is an in-memory Store. Transact snapshots state and restores it
// when fn fails, so rollback behaviour can be asserted.
type memStore struct {
	mu       sync.Mutex
	products map[string]fakeProduct
	orders   map[string]Order
	owners   map[string]Owner

	inserts   int
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]fakeProduct{},
		orders:   map[string]Order{},
		owners:   map[string]Owner{},
	}
}

func (m *memStore) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	products := make(map[string]fakeProduct, len(m.products))
	for k, v := range m.products {
		products[k] = v
	}
	orders := make(map[string]Order, len(m.orders))
	for k, v := range m.orders {
		orders[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.products, m.orders = products, orders
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) GetStock(_ context.Context, productID string) (Stock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return Stock{}, ErrProductNotFound
	}
	return Stock{ProductID: productID, Name: p.name, Quantity: p.quantity}, nil
}

func (m *memStore) DeductStock(_ context.Context, productID string, qty int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	if p.quantity < qty {
		return 0, ErrInsufficientStock.WithDetails("requested", qty).WithDetails("available", p.quantity)
	}
	p.quantity -= qty
	m.products[productID] = p
	return p.quantity, nil
}

func (m *memStore) LockOrderDay(context.Context, string) error { return nil }

func (m *memStore) LastOrderNumber(_ context.Context, prefix string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := ""
	for _, o := range m.orders {
		if strings.HasPrefix(o.OrderNumber, prefix) && o.OrderNumber > last {
			last = o.OrderNumber
		}
	}
	return last, nil
}

func (m *memStore) InsertOrder(_ context.Context, o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, x := range m.orders {
		if x.OrderNumber == o.OrderNumber {
			return ErrDuplicateOrderNumber
		}
	}
	m.orders[o.ID] = o
	m.inserts++
	return nil
}

func (m *memStore) GetOrder(_ context.Context, id string, _ bool) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (m *memStore) GetOrderForUser(ctx context.Context, id, userID string) (Order, error) {
	o, err := m.GetOrder(ctx, id, false)
	if err != nil || o.UserID != userID {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (m *memStore) SetStatus(_ context.Context, id string, s Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status, o.UpdatedAt = s, at
	m.orders[id] = o
	return nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (m *memStore) ListAll(context.Context) ([]OrderWithOwner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []OrderWithOwner{}
	for _, o := range m.orders {
		row := OrderWithOwner{Order: o}
		if u, ok := m.owners[o.UserID]; ok {
			u := u
			row.User = &u
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (m *memStore) stock(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[productID].quantity
}

type capturedEvent struct {
	key     string
	value   []byte
	headers []kafkago.Header
}

type fakePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{key: string(key), value: value, headers: headers})
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
