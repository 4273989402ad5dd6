package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/saptarimadira/trader-backend/internal/payments"
)

type PaymentsHandler struct {
	Repo *payments.Repo
	Log  *zap.Logger
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Route("/api/payments", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/totals", h.totals)
		r.Get("/{id}", h.get)
		r.Get("/customer/{customerID}", h.listByCustomer)
		r.Post("/", h.create)
		r.Put("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.delete)
	})
}

func (h *PaymentsHandler) list(w http.ResponseWriter, r *http.Request) {
	start, end := queryDateRange(r)
	f := payments.ListFilter{
		Status:    payments.Status(r.URL.Query().Get("status")),
		StartDate: start,
		EndDate:   end,
	}
	out, err := h.Repo.List(r.Context(), f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []payments.Payment{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PaymentsHandler) totals(w http.ResponseWriter, r *http.Request) {
	pending, received, err := h.Repo.Totals(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"total_pending":  pending,
		"total_received": received,
	})
}

func (h *PaymentsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment id"})
		return
	}
	p, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PaymentsHandler) listByCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "customerID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid customer id"})
		return
	}
	out, err := h.Repo.ListByCustomer(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []payments.Payment{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PaymentsHandler) create(w http.ResponseWriter, r *http.Request) {
	var p payments.Payment
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if p.CustomerID <= 0 || p.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customer_id and a positive amount are required"})
		return
	}
	if err := h.Repo.Create(r.Context(), &p); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Payment created successfully",
		"payment": p,
	})
}

func (h *PaymentsHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment id"})
		return
	}
	var body struct {
		Status payments.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	p, err := h.Repo.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Payment status updated successfully",
		"payment": p,
	})
}

func (h *PaymentsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment id"})
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment deleted successfully"})
}
