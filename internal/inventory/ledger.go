// Package inventory owns the book stock counter. Stock is shared by every
// concurrent order request, so the only mutators are the Ledger's atomic
// reserve/release operations; nothing else may read-then-write stock.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("book not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx. Reservations that back an
// order must run on the same transaction as the order write.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Ledger interface {
	// Reserve decrements stock and returns the new level. Fails with
	// ErrInsufficientStock without mutating when qty exceeds current stock.
	Reserve(ctx context.Context, q Querier, bookID string, qty int) (int, error)
	// Release increments stock and returns the new level. There is no upper
	// bound; call-idempotency is the caller's responsibility.
	Release(ctx context.Context, q Querier, bookID string, qty int) (int, error)
}

// PGLedger guards the decrement in the UPDATE itself (stock >= qty), so two
// transactions can never both take the last copy.
type PGLedger struct{}

func (PGLedger) Reserve(ctx context.Context, q Querier, bookID string, qty int) (int, error) {
	var stock int
	err := q.QueryRow(ctx, `
		UPDATE books SET stock = stock - $2, updated_at = now()
		WHERE book_id = $1 AND stock >= $2
		RETURNING stock`, bookID, qty).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		// either the book is missing or the guard rejected the decrement
		var exists bool
		if err := q.QueryRow(ctx, `SELECT true FROM books WHERE book_id = $1`, bookID).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, fmt.Errorf("%w: %s", ErrNotFound, bookID)
			}
			return 0, err
		}
		return 0, fmt.Errorf("book %s: %w", bookID, ErrInsufficientStock)
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func (PGLedger) Release(ctx context.Context, q Querier, bookID string, qty int) (int, error) {
	var stock int
	err := q.QueryRow(ctx, `
		UPDATE books SET stock = stock + $2, updated_at = now()
		WHERE book_id = $1
		RETURNING stock`, bookID, qty).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, bookID)
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}
