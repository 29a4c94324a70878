package transport

import (
	"net/http"

	"warunku-backend/internal/domain"
	"warunku-backend/internal/middleware"
	"warunku-backend/internal/repository"
	"warunku-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerRequest is the payload for creating or updating a customer
type CustomerRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,min=5,max=20"`
	Address     string `json:"address,omitempty" validate:"omitempty,max=255"`
}

// CustomerListResponse is a page of customers
type CustomerListResponse struct {
	Customers    []*domain.Customer `json:"customers"`
	CurrentPage  int                `json:"current_page"`
	TotalPages   int                `json:"total_pages"`
	TotalRecords int                `json:"total_records"`
}

// CustomerHandler handles HTTP requests for the customer directory
type CustomerHandler struct {
	customerService service.CustomerService
	debtService     service.DebtService
	logger          *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService service.CustomerService, debtService service.DebtService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		debtService:     debtService,
		logger:          logger,
	}
}

// RegisterRoutes registers all customer routes
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/debts", h.ListDebts)
	})
}

// Create handles customer creation
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	customer, err := h.customerService.Create(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Customer created", zap.String("customer_id", customer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, customer)
}

// Update handles editing a customer's contact fields
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	customer, err := h.customerService.Update(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

// Delete handles customer removal, refused while debts are outstanding
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Customer deleted", zap.String("customer_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// Get handles retrieving a single customer
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	customer, err := h.customerService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

// List handles searching customers by name or phone number
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	query := r.URL.Query().Get("search")

	customers, total, err := h.customerService.Search(r.Context(), query, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CustomerListResponse{
		Customers:    customers,
		CurrentPage:  page,
		TotalPages:   totalPages(total, pageSize),
		TotalRecords: total,
	})
}

// ListDebts handles listing a single customer's debt records
func (h *CustomerHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	page, pageSize := parsePagination(r)
	filter := repository.DebtFilter{CustomerID: &id, Page: page, PageSize: pageSize}

	if v := r.URL.Query().Get("status"); v != "" {
		status, ok := domain.ParseDebtStatus(v)
		if !ok {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		filter.Status = &status
	}

	records, total, err := h.debtService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, DebtListResponse{
		DebtRecords:  records,
		CurrentPage:  page,
		TotalPages:   totalPages(total, pageSize),
		TotalRecords: total,
	})
}

func (h *CustomerHandler) parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *CustomerHandler) decodeInput(w http.ResponseWriter, r *http.Request) (service.CustomerInput, bool) {
	var req CustomerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Customer validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return service.CustomerInput{}, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return service.CustomerInput{}, false
	}

	return service.CustomerInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}, true
}
