package orders

import (
	"time"

	"github.com/VinitPatil01/BookStoreApp/internal/books"
)

// Response shapes are plain data snapshots; no lazy references. Mapping is
// hand-written field by field so every transfer is auditable.

type OrderResponse struct {
	OrderID    string              `json:"order_id"`
	UserID     string              `json:"user_id"`
	OrderDate  time.Time           `json:"order_date"`
	Status     string              `json:"status"`
	TotalCents int                 `json:"total_cents"`
	Items      []OrderItemResponse `json:"items"`
}

type OrderItemResponse struct {
	BookID     string       `json:"book_id"`
	Qty        int          `json:"qty"`
	PriceCents int          `json:"price_cents"` // purchase-time snapshot
	Book       *BookSummary `json:"book,omitempty"`
}

type BookSummary struct {
	BookID        string `json:"book_id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	PriceCents    int    `json:"price_cents"` // current catalog price
	Stock         int    `json:"stock"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
}

func OrderToResponse(o *Order) *OrderResponse {
	resp := &OrderResponse{
		OrderID:    o.ID,
		UserID:     o.UserID,
		OrderDate:  o.OrderDate,
		Status:     string(o.Status),
		TotalCents: o.TotalCents,
		Items:      make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			BookID:     it.BookID,
			Qty:        it.Qty,
			PriceCents: it.PriceCents,
			Book:       BookToSummary(it.Book),
		})
	}
	return resp
}

func BookToSummary(b *books.Book) *BookSummary {
	if b == nil {
		return nil
	}
	return &BookSummary{
		BookID:        b.ID,
		Title:         b.Title,
		Author:        b.Author,
		PriceCents:    b.PriceCents,
		Stock:         b.Stock,
		CoverImageURL: b.CoverImageURL,
	}
}

func ordersToResponses(os []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(os))
	for i := range os {
		out = append(out, *OrderToResponse(&os[i]))
	}
	return out
}
