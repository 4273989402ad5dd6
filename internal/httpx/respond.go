package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/saptarimadira/trader-backend/internal/catalog"
	"github.com/saptarimadira/trader-backend/internal/customers"
	"github.com/saptarimadira/trader-backend/internal/orders"
	"github.com/saptarimadira/trader-backend/internal/payments"
	"github.com/saptarimadira/trader-backend/internal/stock"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Validation and stock
// failures are the client's problem (400), missing rows are 404, anything
// else is an opaque 500 so storage details never leak.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		pnf *orders.ProductNotFoundError
		ise *stock.InsufficientStockError
	)
	switch {
	case errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidQuantity),
		errors.Is(err, orders.ErrInvalidRequest),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, payments.ErrInvalidStatus),
		errors.Is(err, catalog.ErrGodownInUse),
		errors.Is(err, catalog.ErrCategoryInUse):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &pnf):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      err.Error(),
			"product_id": pnf.ProductID,
		})
	case errors.As(err, &ise):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      err.Error(),
			"product_id": ise.ProductID,
			"godown_id":  ise.GodownID,
			"required":   ise.Required,
			"available":  ise.Available,
		})
	case errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, customers.ErrNotFound),
		errors.Is(err, payments.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// queryDateRange parses ?start_date=&end_date= (YYYY-MM-DD). Both must be
// present for a range to apply.
func queryDateRange(r *http.Request) (start, end time.Time) {
	s, e := r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date")
	if s == "" || e == "" {
		return time.Time{}, time.Time{}
	}
	start, err1 := time.Parse("2006-01-02", s)
	end, err2 := time.Parse("2006-01-02", e)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}
	}
	return start, end
}
