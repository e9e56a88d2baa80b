package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ByID(ctx context.Context, userID string) (*User, error) {
	return r.one(ctx, `SELECT user_id, email, name, created_at FROM users WHERE user_id = $1`, userID)
}

func (r *Repo) ByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, `SELECT user_id, email, name, created_at FROM users WHERE email = $1`, email)
}

func (r *Repo) one(ctx context.Context, sql, arg string) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, sql, arg).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, arg)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
