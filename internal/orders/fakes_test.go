package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/VinitPatil01/BookStoreApp/internal/books"
	"github.com/VinitPatil01/BookStoreApp/internal/users"
)

// fakeStore mimics the Postgres store's transactional contract in memory:
// InTx runs the callback against a copy of the state and only swaps it in on
// success, so a failed transaction leaves nothing behind. The mutex stands in
// for the row locks.
type fakeState struct {
	books  map[string]*books.Book
	orders map[string]*Order
}

func (st *fakeState) clone() *fakeState {
	next := &fakeState{
		books:  make(map[string]*books.Book, len(st.books)),
		orders: make(map[string]*Order, len(st.orders)),
	}
	for id, b := range st.books {
		cp := *b
		next.books[id] = &cp
	}
	for id, o := range st.orders {
		cp := *o
		cp.Items = append([]OrderItem(nil), o.Items...)
		next.orders[id] = &cp
	}
	return next
}

type fakeStore struct {
	mu sync.Mutex
	st *fakeState
}

func newFakeStore() *fakeStore {
	return &fakeStore{st: &fakeState{
		books:  map[string]*books.Book{},
		orders: map[string]*Order{},
	}}
}

func (f *fakeStore) addBook(id, title string, priceCents, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.books[id] = &books.Book{ID: id, Title: title, Author: "someone", PriceCents: priceCents, Stock: stock}
}

func (f *fakeStore) setPrice(id string, priceCents int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.books[id].PriceCents = priceCents
}

func (f *fakeStore) stock(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st.books[id].Stock
}

func (f *fakeStore) InTx(_ context.Context, fn func(tx Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.st.clone()
	if err := fn(&fakeTx{st: next}); err != nil {
		return err
	}
	f.st = next
	return nil
}

type fakeTx struct{ st *fakeState }

func (t *fakeTx) LockBook(_ context.Context, bookID string) (*books.Book, error) {
	b, ok := t.st.books[bookID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	}
	cp := *b
	return &cp, nil
}

func (t *fakeTx) Reserve(_ context.Context, bookID string, qty int) (int, error) {
	b, ok := t.st.books[bookID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	}
	if b.Stock < qty {
		return 0, fmt.Errorf("stock guard rejected book %s", bookID)
	}
	b.Stock -= qty
	return b.Stock, nil
}

func (t *fakeTx) Release(_ context.Context, bookID string, qty int) (int, error) {
	b, ok := t.st.books[bookID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	}
	b.Stock += qty
	return b.Stock, nil
}

func (t *fakeTx) InsertOrder(_ context.Context, o *Order) error {
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	t.st.orders[o.ID] = &cp
	return nil
}

func (t *fakeTx) LockOrder(_ context.Context, orderID, userID string) (*Order, error) {
	o, ok := t.st.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return o, nil
}

func (t *fakeTx) SetStatus(_ context.Context, orderID string, s Status) error {
	o, ok := t.st.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	o.Status = s
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeStore) ByID(_ context.Context, orderID string) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.st.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return f.withBooks(o), nil
}

func (f *fakeStore) ForUser(_ context.Context, orderID, userID string) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.st.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return f.withBooks(o), nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID string) ([]Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Order
	for _, o := range f.st.orders {
		if o.UserID == userID {
			out = append(out, *f.withBooks(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Order
	for _, o := range f.st.orders {
		out = append(out, *f.withBooks(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (f *fakeStore) StatusByID(_ context.Context, orderID string) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.st.orders[orderID]
	if !ok {
		return "", ErrOrderNotFound
	}
	return o.Status, nil
}

// withBooks mirrors the pg store's catalog join on reads.
func (f *fakeStore) withBooks(o *Order) *Order {
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	for i := range cp.Items {
		if b, ok := f.st.books[cp.Items[i].BookID]; ok {
			bc := *b
			cp.Items[i].Book = &bc
		}
	}
	return &cp
}

type fakeCatalog struct{ s *fakeStore }

func (c *fakeCatalog) ByID(_ context.Context, bookID string) (*books.Book, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	b, ok := c.s.st.books[bookID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", books.ErrNotFound, bookID)
	}
	cp := *b
	return &cp, nil
}

type fakeUsers map[string]*users.User

func (f fakeUsers) ByID(_ context.Context, userID string) (*users.User, error) {
	u, ok := f[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", users.ErrNotFound, userID)
	}
	return u, nil
}

type fakeCart struct {
	mu      sync.Mutex
	cleared []string
	err     error
}

func (f *fakeCart) Clear(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.cleared = append(f.cleared, userID)
	return nil
}

type published struct {
	topic string
	key   string
	value []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) Publish(topic string, key, value []byte, _ ...kafkago.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{topic: topic, key: string(key), value: value})
}

func (f *fakePublisher) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.topic)
	}
	return out
}
