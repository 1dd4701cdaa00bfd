package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the HTTP surface. Authentication for the admin
// routes is handled upstream; this service only reads the actor header.
func NewRouter(orders *OrderHandler, products *ProductHandler, movements *StockMovementHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Storefront
	r.Get("/products", products.GetAll)
	r.Get("/products/{id}", products.GetByID)
	r.Post("/orders", orders.Create)

	// Admin
	r.Get("/orders", orders.List)
	r.Get("/orders/{id}", orders.GetByID)
	r.Patch("/orders/{id}/status", orders.UpdateStatus)

	r.Get("/products/stock/low", products.GetLowStock)
	r.Post("/products/{id}/stock/adjust", products.AdjustStock)
	r.Get("/products/{id}/stock-movements", movements.GetByProduct)
	r.Get("/stock-movements", movements.List)
	r.Get("/audit-logs", movements.ListAuditLogs)

	return r
}
