package cart

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Item struct {
	BookID string `json:"book_id"`
	Qty    int    `json:"qty"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ByUser(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `SELECT book_id, qty FROM cart_items WHERE user_id = $1 ORDER BY book_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.BookID, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Add merges with an existing line for the same book.
func (r *Repo) Add(ctx context.Context, userID, bookID string, qty int) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_items(user_id, book_id, qty) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, book_id) DO UPDATE SET qty = cart_items.qty + EXCLUDED.qty`,
		userID, bookID, qty)
	return err
}

// Update sets the quantity outright; qty <= 0 removes the line.
func (r *Repo) Update(ctx context.Context, userID, bookID string, qty int) error {
	if qty <= 0 {
		_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND book_id = $2`, userID, bookID)
		return err
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_items(user_id, book_id, qty) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, book_id) DO UPDATE SET qty = EXCLUDED.qty`,
		userID, bookID, qty)
	return err
}

func (r *Repo) Remove(ctx context.Context, userID, bookID string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// Clear is idempotent; clearing an empty cart is fine.
func (r *Repo) Clear(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}
