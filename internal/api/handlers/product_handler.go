package handlers

import (
	"net/http"
	"strconv"

	"store-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	products *service.ProductService
	validate *validator.Validate
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{
		products: products,
		validate: validator.New(),
	}
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "failed to get product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		writeRepoError(w, err, "failed to get products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := queryInt(r, "threshold", 5)

	products, err := h.products.ListLowStock(r.Context(), threshold)
	if err != nil {
		writeRepoError(w, err, "failed to get low stock products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

type adjustStockRequest struct {
	NewStock *int   `json:"new_stock" validate:"required,gte=0"`
	Reason   string `json:"reason"`
}

func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req adjustStockRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	if ok := validateStruct(w, h.validate, &req); !ok {
		return
	}

	var actorID *string
	if actor := r.Header.Get("X-Actor-Id"); actor != "" {
		actorID = &actor
	}

	product, err := h.products.AdjustStock(r.Context(), id, *req.NewStock, req.Reason, actorID)
	if err != nil {
		writeRepoError(w, err, "failed to adjust stock")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid product id", nil)
		return 0, false
	}
	return id, true
}
