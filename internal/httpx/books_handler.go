package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/VinitPatil01/BookStoreApp/internal/books"
	"github.com/VinitPatil01/BookStoreApp/internal/orders"
)

type BooksHandler struct {
	Repo *books.Repo
}

func (h *BooksHandler) Register(r *chi.Mux) {
	r.Route("/api/books", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/search", h.search)
		r.Get("/{bookID}", h.byID)
	})
}

func (h *BooksHandler) list(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Repo.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Books retrieved successfully", summaries(bs))
}

func (h *BooksHandler) search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "missing keyword")
		return
	}
	bs, err := h.Repo.SearchByTitle(r.Context(), keyword)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Books retrieved successfully", summaries(bs))
}

func (h *BooksHandler) byID(w http.ResponseWriter, r *http.Request) {
	b, err := h.Repo.ByID(r.Context(), chi.URLParam(r, "bookID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Book retrieved successfully", orders.BookToSummary(b))
}

func summaries(bs []books.Book) []*orders.BookSummary {
	out := make([]*orders.BookSummary, 0, len(bs))
	for i := range bs {
		out = append(out, orders.BookToSummary(&bs[i]))
	}
	return out
}
