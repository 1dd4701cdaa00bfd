package handlers

import (
	"net/http"
	"strconv"

	"store-service/internal/repository"
	"store-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderHandler struct {
	orders   *service.OrderService
	validate *validator.Validate
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		validate: validator.New(),
	}
}

type customerPayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
	Doc   string `json:"doc"`
}

type addressPayload struct {
	Zip    string `json:"zip"`
	Street string `json:"street"`
	Number string `json:"number"`
	Comp   string `json:"comp"`
	City   string `json:"city"`
	State  string `json:"state"`
}

type orderItemPayload struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	Customer      customerPayload    `json:"customer" validate:"required"`
	Address       addressPayload     `json:"address"`
	Items         []orderItemPayload `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string             `json:"payment_method" validate:"required"`
	Notes         string             `json:"notes"`
}

type updateOrderStatusRequest struct {
	Status        *string `json:"status" validate:"omitempty,oneof=PENDING PAID SHIPPED DELIVERED CANCELLED"`
	PaymentStatus *string `json:"payment_status"`
	TrackingCode  *string `json:"tracking_code"`
	Notes         *string `json:"notes"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	if ok := validateStruct(w, h.validate, &req); !ok {
		return
	}

	input := repository.CreateOrderInput{
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		CustomerPhone: req.Customer.Phone,
		CustomerDoc:   req.Customer.Doc,
		AddressZip:    req.Address.Zip,
		AddressStreet: req.Address.Street,
		AddressNumber: req.Address.Number,
		AddressComp:   req.Address.Comp,
		AddressCity:   req.Address.City,
		AddressState:  req.Address.State,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, repository.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(r.Context(), input)
	if err != nil {
		writeRepoError(w, err, "failed to create order")
		return
	}

	w.Header().Set("Location", "/orders/"+order.OrderID)
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_id", "order id is required", nil)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "failed to get order")
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type orderListResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.OrderFilter{
		Status: r.URL.Query().Get("status"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 20),
	}

	orders, total, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		writeRepoError(w, err, "failed to get orders")
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	totalPages := (total + filter.Limit - 1) / filter.Limit

	writeJSON(w, http.StatusOK, orderListResponse{
		Data:       orders,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_id", "order id is required", nil)
		return
	}

	var req updateOrderStatusRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}
	if ok := validateStruct(w, h.validate, &req); !ok {
		return
	}

	input := repository.UpdateOrderStatusInput{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		TrackingCode:  req.TrackingCode,
		Notes:         req.Notes,
	}
	if actor := r.Header.Get("X-Actor-Id"); actor != "" {
		input.ChangedBy = &actor
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, input)
	if err != nil {
		writeRepoError(w, err, "failed to update order status")
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
