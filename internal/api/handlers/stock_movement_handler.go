package handlers

import (
	"net/http"
	"time"

	"store-service/internal/repository"
	"store-service/internal/service"
)

type StockMovementHandler struct {
	movements repository.StockMovementRepository
	audit     *service.AuditService
}

func NewStockMovementHandler(movements repository.StockMovementRepository, audit *service.AuditService) *StockMovementHandler {
	return &StockMovementHandler{movements: movements, audit: audit}
}

func (h *StockMovementHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.MovementFilter{
		ProductID: queryInt(r, "product_id", 0),
		OrderID:   r.URL.Query().Get("order_id"),
		Type:      r.URL.Query().Get("type"),
		Limit:     queryInt(r, "limit", 50),
		Offset:    queryInt(r, "offset", 0),
	}

	from, ok := queryDate(w, r, "from")
	if !ok {
		return
	}
	filter.From = from

	to, ok := queryDate(w, r, "to")
	if !ok {
		return
	}
	filter.To = to

	movements, err := h.movements.List(r.Context(), filter)
	if err != nil {
		writeRepoError(w, err, "failed to get stock movements")
		return
	}

	writeJSON(w, http.StatusOK, movements)
}

func (h *StockMovementHandler) GetByProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	movements, err := h.movements.GetByProductID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "failed to get stock movements")
		return
	}

	writeJSON(w, http.StatusOK, movements)
}

func (h *StockMovementHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.List(r.Context(), queryInt(r, "limit", 100))
	if err != nil {
		writeRepoError(w, err, "failed to get audit logs")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func queryDate(w http.ResponseWriter, r *http.Request, key string) (*time.Time, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, true
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "invalid date for '"+key+"', expected YYYY-MM-DD", nil)
		return nil, false
	}
	return &t, true
}
