package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/VinitPatil01/BookStoreApp/internal/orders"
	"github.com/VinitPatil01/BookStoreApp/internal/redisx"
	"github.com/VinitPatil01/BookStoreApp/internal/users"
)

// UserResolver turns the email in the URL into a user. Mirrors how the
// request layer addresses accounts by email everywhere.
type UserResolver interface {
	ByEmail(ctx context.Context, email string) (*users.User, error)
}

type OrdersHandler struct {
	Svc   *orders.Service
	Users UserResolver
	Cache redisx.Cache
}

type CreateOrderReq struct {
	Items []orders.ItemInput `json:"items"`
}

type UpdateStatusReq struct {
	Status string `json:"status"`
}

type OrderTotalResp struct {
	TotalCents int `json:"total_cents"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/user/{email}", h.createOrder)
		r.Get("/user/{email}", h.getUserOrders)
		r.Get("/{orderID}/user/{email}", h.getOrder)
		r.Get("/{orderID}/status", h.getOrderStatus)
		r.Put("/{orderID}/user/{email}/cancel", h.cancelOrder)
		r.Get("/admin/all", h.getAllOrders)
		r.Put("/admin/{orderID}/status", h.updateOrderStatus)
		r.Post("/calculate-total", h.calculateTotal)
	})
}

func (h *OrdersHandler) resolveUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	email := chi.URLParam(r, "email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "missing email")
		return nil, false
	}
	u, err := h.Users.ByEmail(r.Context(), email)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return u, true
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := h.resolveUser(w, r)
	if !ok {
		return
	}

	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.Svc.CreateOrder(ctx, u.ID, req.Items)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// warm the status cache so the fast path hits right away
	h.cacheStatus(ctx, resp.OrderID, resp.Status)

	writeSuccess(w, http.StatusCreated, "Order created successfully", resp)
}

func (h *OrdersHandler) getUserOrders(w http.ResponseWriter, r *http.Request) {
	u, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	list, err := h.Svc.GetOrdersByUserID(r.Context(), u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Orders retrieved successfully", list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	resp, err := h.Svc.GetOrderByID(r.Context(), chi.URLParam(r, "orderID"), u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Order retrieved successfully", resp)
}

// getOrderStatus serves from the redis cache first and falls back to the
// store, refilling the cache on a miss.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Cache.Get(ctx, key); err == nil && s != "" {
		writeSuccess(w, http.StatusOK, "Order status retrieved successfully", json.RawMessage(s))
		return
	}

	status, err := h.Svc.GetOrderStatus(ctx, orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cacheStatus(ctx, orderID, string(status))
	writeSuccess(w, http.StatusOK, "Order status retrieved successfully",
		map[string]string{"status": string(status)})
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := h.resolveUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "orderID")

	cancelled, err := h.Svc.CancelOrder(r.Context(), orderID, u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !cancelled {
		writeError(w, http.StatusConflict, "order cannot be cancelled")
		return
	}
	h.cacheStatus(r.Context(), orderID, string(orders.StatusCancelled))
	writeSuccess(w, http.StatusOK, "Order cancelled successfully", "Order has been successfully cancelled")
}

func (h *OrdersHandler) getAllOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.GetAllOrders(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "All orders retrieved successfully", list)
}

func (h *OrdersHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	status, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	orderID := chi.URLParam(r, "orderID")
	resp, err := h.Svc.UpdateOrderStatus(r.Context(), orderID, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.cacheStatus(r.Context(), orderID, string(status))
	writeSuccess(w, http.StatusOK, "Order status updated successfully", resp)
}

func (h *OrdersHandler) calculateTotal(w http.ResponseWriter, r *http.Request) {
	var items []orders.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	total, err := h.Svc.CalculateOrderTotal(r.Context(), items)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Order total calculated successfully", OrderTotalResp{TotalCents: total})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID, status string) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	doc, _ := json.Marshal(map[string]string{"status": status})
	_ = h.Cache.Set(ctx, key, doc, redisx.TTLStatusCache)
}
