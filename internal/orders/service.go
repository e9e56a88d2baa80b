package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/VinitPatil01/BookStoreApp/internal/books"
	kafkax "github.com/VinitPatil01/BookStoreApp/internal/kafka"
	"github.com/VinitPatil01/BookStoreApp/internal/users"
)

// Collaborator contracts. Implemented by the books, users and cart repos.
type BookFinder interface {
	ByID(ctx context.Context, bookID string) (*books.Book, error)
}

type UserFinder interface {
	ByID(ctx context.Context, userID string) (*users.User, error)
}

type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

type EventPublisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// Service is the order lifecycle manager: it turns requested line items into
// a committed order, and reverses the inventory effect on cancellation.
type Service struct {
	Store  Store
	Books  BookFinder
	Users  UserFinder
	Cart   CartClearer
	Events EventPublisher
	Log    *slog.Logger
	Name   string // producer name on event envelopes
}

// CreateOrder validates the request, then in one transaction, per item: locks
// the book, reserves stock, snapshots the price. The order and its items are
// persisted in the same transaction, so a failure on any item rolls back every
// earlier reservation. After commit the cart is cleared best-effort and an
// OrderPlaced event goes out.
func (s *Service) CreateOrder(ctx context.Context, userID string, items []ItemInput) (*OrderResponse, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidOrderRequest)
	}
	for _, it := range items {
		if it.BookID == "" {
			return nil, fmt.Errorf("%w: missing book id", ErrInvalidOrderRequest)
		}
		if it.Qty <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for book %s", ErrInvalidOrderRequest, it.BookID)
		}
	}
	if _, err := s.Users.ByID(ctx, userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, err
	}

	order := &Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    StatusPending,
		OrderDate: time.Now().UTC(),
	}

	err := s.Store.InTx(ctx, func(tx Tx) error {
		total := 0
		for _, it := range items {
			b, err := tx.LockBook(ctx, it.BookID)
			if err != nil {
				return err
			}
			if b.Stock < it.Qty {
				return &InsufficientStockError{
					BookID:    b.ID,
					Title:     b.Title,
					Requested: it.Qty,
					Available: b.Stock,
				}
			}
			left, err := tx.Reserve(ctx, it.BookID, it.Qty)
			if err != nil {
				return err
			}
			b.Stock = left

			// price snapshot: the line item keeps today's price forever
			order.Items = append(order.Items, OrderItem{
				OrderID:    order.ID,
				BookID:     b.ID,
				Qty:        it.Qty,
				PriceCents: b.PriceCents,
				Book:       b,
			})
			total += b.PriceCents * it.Qty
		}
		order.TotalCents = total
		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	// The order stands even if the cart could not be cleared.
	if err := s.Cart.Clear(ctx, userID); err != nil {
		s.Log.WarnContext(ctx, "cart clear failed after order commit",
			"order_id", order.ID, "user_id", userID, "error", err)
	}

	s.publishPlaced(order)
	return OrderToResponse(order), nil
}

// CancelOrder releases every line item's stock and moves the order to
// CANCELLED, but only from PENDING and only once. A non-pending order returns
// false without error or mutation.
func (s *Service) CancelOrder(ctx context.Context, orderID, userID string) (bool, error) {
	var cancelled bool
	var released []ItemQty

	err := s.Store.InTx(ctx, func(tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID, userID)
		if err != nil {
			return err
		}
		if !o.Status.Cancellable() {
			return nil
		}
		for _, it := range o.Items {
			if _, err := tx.Release(ctx, it.BookID, it.Qty); err != nil {
				return err
			}
			released = append(released, ItemQty{BookID: it.BookID, Qty: it.Qty})
		}
		if err := tx.SetStatus(ctx, orderID, StatusCancelled); err != nil {
			return err
		}
		cancelled = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if cancelled {
		s.publish(TopicOrderCancelled, EventOrderCancelled, orderID,
			OrderCancelledPayload{OrderID: orderID, UserID: userID, Released: released})
	}
	return cancelled, nil
}

// UpdateOrderStatus is the administrative overwrite. It never adjusts
// inventory; only CancelOrder restores stock.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status Status) (*OrderResponse, error) {
	err := s.Store.InTx(ctx, func(tx Tx) error {
		return tx.SetStatus(ctx, orderID, status)
	})
	if err != nil {
		return nil, err
	}
	o, err := s.Store.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(TopicOrderStatusChanged, EventOrderStatusChanged, orderID,
		OrderStatusChangedPayload{OrderID: orderID, Status: string(status)})
	return OrderToResponse(o), nil
}

// CalculateOrderTotal previews a total against current catalog prices, not
// snapshots. Missing books contribute zero rather than failing.
func (s *Service) CalculateOrderTotal(ctx context.Context, items []ItemInput) (int, error) {
	total := 0
	for _, it := range items {
		b, err := s.Books.ByID(ctx, it.BookID)
		if errors.Is(err, books.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += b.PriceCents * it.Qty
	}
	return total, nil
}

func (s *Service) GetOrderByID(ctx context.Context, orderID, userID string) (*OrderResponse, error) {
	o, err := s.Store.ForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	return OrderToResponse(o), nil
}

func (s *Service) GetOrdersByUserID(ctx context.Context, userID string) ([]OrderResponse, error) {
	os, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ordersToResponses(os), nil
}

func (s *Service) GetAllOrders(ctx context.Context) ([]OrderResponse, error) {
	os, err := s.Store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return ordersToResponses(os), nil
}

func (s *Service) GetOrderStatus(ctx context.Context, orderID string) (Status, error) {
	return s.Store.StatusByID(ctx, orderID)
}

func (s *Service) publishPlaced(o *Order) {
	items := make([]ItemPrice, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemPrice{BookID: it.BookID, Qty: it.Qty, PriceCents: it.PriceCents})
	}
	s.publish(TopicOrderPlaced, EventOrderPlaced, o.ID, OrderPlacedPayload{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Items:      items,
		TotalCents: o.TotalCents,
	})
}

func (s *Service) publish(topic, eventType, orderID string, payload any) {
	if s.Events == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Name,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Events.Publish(topic, PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
