package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/VinitPatil01/BookStoreApp/internal/cart"
)

type CartHandler struct {
	Cart  *cart.Repo
	Users UserResolver
}

type cartItemReq struct {
	BookID string `json:"book_id"`
	Qty    int    `json:"qty"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Route("/api/cart/user/{email}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Post("/items", h.add)
		r.Put("/items/{bookID}", h.update)
		r.Delete("/items/{bookID}", h.remove)
		r.Delete("/", h.clear)
	})
}

func (h *CartHandler) resolveUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := chi.URLParam(r, "email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "missing email")
		return "", false
	}
	u, err := h.Users.ByEmail(r.Context(), email)
	if err != nil {
		writeDomainError(w, err)
		return "", false
	}
	return u.ID, true
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	items, err := h.Cart.ByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Cart retrieved successfully", items)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.BookID == "" || req.Qty <= 0 {
		writeError(w, http.StatusBadRequest, "book_id and positive qty required")
		return
	}
	if err := h.Cart.Add(r.Context(), userID, req.BookID, req.Qty); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Item added to cart", nil)
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.Cart.Update(r.Context(), userID, chi.URLParam(r, "bookID"), req.Qty); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Cart item updated", nil)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	removed, err := h.Cart.Remove(r.Context(), userID, chi.URLParam(r, "bookID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "cart item not found")
		return
	}
	writeSuccess(w, http.StatusOK, "Item removed from cart", nil)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	if err := h.Cart.Clear(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Cart cleared", nil)
}
