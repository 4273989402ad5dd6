package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/saptarimadira/trader-backend/internal/orders"
	"github.com/saptarimadira/trader-backend/internal/redisx"
)

type OrdersHandler struct {
	Coordinator *orders.Coordinator
	Repo        *orders.Repo
	Redis       *redis.Client
	Log         *zap.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/recent", h.recent)
		r.Get("/{id}", h.get)
		r.Post("/", h.create)
		r.Put("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.delete)
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	start, end := queryDateRange(r)
	f := orders.ListFilter{
		Status:    orders.Status(r.URL.Query().Get("status")),
		StartDate: start,
		EndDate:   end,
	}
	out, err := h.Repo.ListOrders(r.Context(), f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []orders.OrderSummary{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) recent(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		_, _ = fmt.Sscanf(s, "%d", &limit)
	}
	out, err := h.Repo.RecentOrders(r.Context(), limit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []orders.OrderSummary{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	key := fmt.Sprintf(redisx.KeyOrderView, id)
	if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	view, err := h.Coordinator.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if b, err := json.Marshal(view); err == nil {
		_ = h.Redis.Set(r.Context(), key, b, redisx.TTLOrderView).Err()
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	view, err := h.Coordinator.CreateOrder(r.Context(), req)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created successfully",
		"order":   view,
	})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	var body struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.Coordinator.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.invalidate(r, id)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order status updated successfully",
		"order":   o,
	})
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	if _, err := h.Coordinator.DeleteOrder(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.invalidate(r, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

func (h *OrdersHandler) invalidate(r *http.Request, id int64) {
	_ = h.Redis.Del(r.Context(), fmt.Sprintf(redisx.KeyOrderView, id)).Err()
}
