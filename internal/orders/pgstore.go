package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VinitPatil01/BookStoreApp/internal/books"
	"github.com/VinitPatil01/BookStoreApp/internal/inventory"
)

type PGStore struct {
	DB     *pgxpool.Pool
	Ledger inventory.Ledger
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db, Ledger: inventory.PGLedger{}}
}

func (s *PGStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx, ledger: s.Ledger}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct {
	tx     pgx.Tx
	ledger inventory.Ledger
}

func (t *pgTx) LockBook(ctx context.Context, bookID string) (*books.Book, error) {
	var b books.Book
	err := t.tx.QueryRow(ctx, `
		SELECT book_id, title, author, description, price_cents, stock, cover_image_url
		FROM books WHERE book_id = $1 FOR UPDATE`, bookID).
		Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.PriceCents, &b.Stock, &b.CoverImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *pgTx) Reserve(ctx context.Context, bookID string, qty int) (int, error) {
	return t.ledger.Reserve(ctx, t.tx, bookID, qty)
}

func (t *pgTx) Release(ctx context.Context, bookID string, qty int) (int, error) {
	return t.ledger.Release(ctx, t.tx, bookID, qty)
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders(order_id, user_id, status, total_cents, order_date)
		VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.UserID, string(o.Status), o.TotalCents, o.OrderDate)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		if _, err := t.tx.Exec(ctx, `
			INSERT INTO order_items(order_id, book_id, qty, price_cents)
			VALUES ($1, $2, $3, $4)`,
			o.ID, it.BookID, it.Qty, it.PriceCents); err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) LockOrder(ctx context.Context, orderID, userID string) (*Order, error) {
	var o Order
	var status string
	err := t.tx.QueryRow(ctx, `
		SELECT order_id, user_id, status, total_cents, order_date, updated_at
		FROM orders WHERE order_id = $1 AND user_id = $2 FOR UPDATE`, orderID, userID).
		Scan(&o.ID, &o.UserID, &status, &o.TotalCents, &o.OrderDate, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)

	rows, err := t.tx.Query(ctx, `
		SELECT book_id, qty, price_cents FROM order_items
		WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		it := OrderItem{OrderID: o.ID}
		if err := rows.Scan(&it.BookID, &it.Qty, &it.PriceCents); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (t *pgTx) SetStatus(ctx context.Context, orderID string, s Status) error {
	ct, err := t.tx.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = now() WHERE order_id = $1`,
		orderID, string(s))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return nil
}

const orderColumns = `order_id, user_id, status, total_cents, order_date, updated_at`

func (s *PGStore) ByID(ctx context.Context, orderID string) (*Order, error) {
	return s.one(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID)
}

func (s *PGStore) ForUser(ctx context.Context, orderID, userID string) (*Order, error) {
	return s.one(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1 AND user_id = $2`, orderID, userID)
}

func (s *PGStore) one(ctx context.Context, sql string, args ...any) (*Order, error) {
	var o Order
	var status string
	err := s.DB.QueryRow(ctx, sql, args...).
		Scan(&o.ID, &o.UserID, &status, &o.TotalCents, &o.OrderDate, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	if err := s.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY order_date DESC`, userID)
}

func (s *PGStore) ListAll(ctx context.Context) ([]Order, error) {
	return s.list(ctx, `SELECT ` + orderColumns + ` FROM orders ORDER BY order_date DESC`)
}

func (s *PGStore) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &status, &o.TotalCents, &o.OrderDate, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// loadItems joins the catalog so responses can carry book summaries next to
// the purchase-time snapshot price.
func (s *PGStore) loadItems(ctx context.Context, o *Order) error {
	rows, err := s.DB.Query(ctx, `
		SELECT oi.book_id, oi.qty, oi.price_cents,
		       b.title, b.author, b.price_cents, b.stock, b.cover_image_url
		FROM order_items oi
		JOIN books b ON b.book_id = oi.book_id
		WHERE oi.order_id = $1 ORDER BY oi.id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		it := OrderItem{OrderID: o.ID}
		var b books.Book
		if err := rows.Scan(&it.BookID, &it.Qty, &it.PriceCents,
			&b.Title, &b.Author, &b.PriceCents, &b.Stock, &b.CoverImageURL); err != nil {
			return err
		}
		b.ID = it.BookID
		it.Book = &b
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (s *PGStore) StatusByID(ctx context.Context, orderID string) (Status, error) {
	var status string
	err := s.DB.QueryRow(ctx, `SELECT status FROM orders WHERE order_id = $1`, orderID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(status), nil
}
