package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("book not found")

type Book struct {
	ID            string
	Title         string
	Author        string
	Description   string
	PriceCents    int
	Stock         int
	CoverImageURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Repo covers catalog reads only. Stock is never written here; that goes
// through the inventory ledger.
type Repo struct{ DB *pgxpool.Pool }

const bookColumns = `book_id, title, author, description, price_cents, stock, cover_image_url, created_at, updated_at`

func (r *Repo) ByID(ctx context.Context, bookID string) (*Book, error) {
	var b Book
	err := r.DB.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE book_id = $1`, bookID).
		Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.PriceCents, &b.Stock, &b.CoverImageURL, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, bookID)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) List(ctx context.Context) ([]Book, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func (r *Repo) SearchByTitle(ctx context.Context, keyword string) ([]Book, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+bookColumns+` FROM books WHERE title ILIKE '%' || $1 || '%' ORDER BY title`, keyword)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func scanBooks(rows pgx.Rows) ([]Book, error) {
	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.PriceCents, &b.Stock, &b.CoverImageURL, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
