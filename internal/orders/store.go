package orders

import (
	"context"

	"github.com/VinitPatil01/BookStoreApp/internal/books"
)

// Store persists orders. All mutations run inside one transaction via InTx:
// the stock reservation and the order write must commit or roll back together,
// so a failed line item never leaks reservations from earlier items.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	ByID(ctx context.Context, orderID string) (*Order, error)
	ForUser(ctx context.Context, orderID, userID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	StatusByID(ctx context.Context, orderID string) (Status, error)
}

// Tx is the transaction-scoped surface the lifecycle manager drives.
type Tx interface {
	// LockBook row-locks the book so its stock and price hold still for the
	// rest of the transaction. ErrBookNotFound when missing.
	LockBook(ctx context.Context, bookID string) (*books.Book, error)
	// Reserve atomically decrements stock, returning the new level.
	Reserve(ctx context.Context, bookID string, qty int) (int, error)
	// Release atomically increments stock, returning the new level.
	Release(ctx context.Context, bookID string, qty int) (int, error)
	// InsertOrder writes the order and all its line items in one go.
	InsertOrder(ctx context.Context, o *Order) error
	// LockOrder loads and row-locks the user's order, items included.
	// ErrOrderNotFound when no such order belongs to the user.
	LockOrder(ctx context.Context, orderID, userID string) (*Order, error)
	// SetStatus overwrites the status. ErrOrderNotFound when missing.
	SetStatus(ctx context.Context, orderID string, s Status) error
}
