package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/saptarimadira/trader-backend/internal/reports"
)

type ReportsHandler struct {
	Repo *reports.Repo
	Log  *zap.Logger
}

func (h *ReportsHandler) Register(r *chi.Mux) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/dashboard", h.dashboard)
		r.Get("/sales", h.sales)
	})
}

func (h *ReportsHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Repo.Dashboard(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ReportsHandler) sales(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	if start == "" || end == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_date and end_date are required"})
		return
	}
	s, err := h.Repo.Sales(r.Context(), start, end)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
