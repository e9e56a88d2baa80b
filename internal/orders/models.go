package orders

import (
	"time"

	"github.com/VinitPatil01/BookStoreApp/internal/books"
)

type Order struct {
	ID         string
	UserID     string
	Status     Status // see status.go
	TotalCents int
	OrderDate  time.Time
	UpdatedAt  time.Time
	Items      []OrderItem
}

// OrderItem is created atomically with its order and never mutated.
// PriceCents is the purchase-time snapshot, not the catalog price.
type OrderItem struct {
	OrderID    string
	BookID     string
	Qty        int
	PriceCents int
	Book       *books.Book // populated for display, may be nil
}

type ItemInput struct {
	BookID string `json:"book_id"`
	Qty    int    `json:"qty"`
}
