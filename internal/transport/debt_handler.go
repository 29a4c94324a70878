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

// DebtItemRequest is one requested line of a new debt record
type DebtItemRequest struct {
	ProductID     string   `json:"product_id" validate:"required,uuid"`
	UnitLabel     string   `json:"unit_label" validate:"required"`
	Quantity      float64  `json:"quantity" validate:"required,gt=0"`
	PriceOverride *float64 `json:"price_override,omitempty" validate:"omitempty,gte=0"`
}

// CreateDebtRequest is the payload for creating a debt record. Any total the
// caller supplies is ignored; totals are always computed server-side.
type CreateDebtRequest struct {
	CustomerID     string            `json:"customer_id" validate:"required,uuid"`
	Items          []DebtItemRequest `json:"items" validate:"required,min=1,dive"`
	DebtDate       string            `json:"debt_date,omitempty"`
	DueDate        string            `json:"due_date,omitempty"`
	Notes          string            `json:"notes,omitempty" validate:"omitempty,max=500"`
	InitialPayment *float64          `json:"initial_payment,omitempty" validate:"omitempty,gte=0"`
}

// RecordPaymentRequest is the payload for appending a payment entry
type RecordPaymentRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PaymentDate string  `json:"payment_date,omitempty"`
	Method      string  `json:"method,omitempty" validate:"omitempty,max=50"`
	Notes       string  `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// UpdateDebtMetaRequest is the payload for editing notes and due date
type UpdateDebtMetaRequest struct {
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=500"`
	DueDate *string `json:"due_date,omitempty"`
}

// DebtListResponse is a page of debt records
type DebtListResponse struct {
	DebtRecords  []*domain.DebtRecord `json:"debt_records"`
	CurrentPage  int                  `json:"current_page"`
	TotalPages   int                  `json:"total_pages"`
	TotalRecords int                  `json:"total_records"`
}

// DebtHandler handles HTTP requests for the debt ledger
type DebtHandler struct {
	debtService service.DebtService
	logger      *zap.Logger
}

// NewDebtHandler creates a new DebtHandler
func NewDebtHandler(debtService service.DebtService, logger *zap.Logger) *DebtHandler {
	return &DebtHandler{
		debtService: debtService,
		logger:      logger,
	}
}

// RegisterRoutes registers all debt ledger routes
func (h *DebtHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/debts", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.UpdateMeta)
		r.Post("/{id}/payments", h.RecordPayment)
	})
}

// Create handles debt record creation
func (h *DebtHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDebtRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Debt creation validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, ok := h.buildCreateInput(w, &req)
	if !ok {
		return
	}

	record, err := h.debtService.Create(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Debt record created",
		zap.String("debt_record_id", record.ID.String()),
		zap.String("customer_id", record.CustomerID.String()),
		zap.Float64("total_amount", record.TotalAmount),
		zap.String("status", string(record.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, record)
}

// RecordPayment handles appending a payment entry to a debt record
func (h *DebtHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Payment validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.RecordPaymentInput{
		Amount: req.Amount,
		Method: req.Method,
		Notes:  req.Notes,
	}

	if req.PaymentDate != "" {
		paymentDate, err := parseDate(req.PaymentDate)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid payment date format")
			return
		}
		input.PaymentDate = &paymentDate
	}

	record, err := h.debtService.RecordPayment(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Payment recorded",
		zap.String("debt_record_id", record.ID.String()),
		zap.Float64("amount", req.Amount),
		zap.Float64("amount_paid", record.AmountPaid),
		zap.String("status", string(record.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, record)
}

// UpdateMeta handles editing a debt record's notes and due date
func (h *DebtHandler) UpdateMeta(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateDebtMetaRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Debt meta validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.UpdateDebtMetaInput{Notes: req.Notes}

	if req.DueDate != nil && *req.DueDate != "" {
		dueDate, err := parseDate(*req.DueDate)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid due date format")
			return
		}
		input.DueDate = &dueDate
	}

	record, err := h.debtService.UpdateMeta(r.Context(), id, input)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, record)
}

// Get handles retrieving a single debt record
func (h *DebtHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	record, err := h.debtService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, record)
}

// List handles listing debt records with filters and pagination
func (h *DebtHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	records, total, err := h.debtService.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, DebtListResponse{
		DebtRecords:  records,
		CurrentPage:  filter.Page,
		TotalPages:   totalPages(total, filter.PageSize),
		TotalRecords: total,
	})
}

func (h *DebtHandler) parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid debt record ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *DebtHandler) buildCreateInput(w http.ResponseWriter, req *CreateDebtRequest) (service.CreateDebtInput, bool) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return service.CreateDebtInput{}, false
	}

	input := service.CreateDebtInput{
		CustomerID:     customerID,
		Notes:          req.Notes,
		InitialPayment: req.InitialPayment,
	}

	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID in items")
			return service.CreateDebtInput{}, false
		}

		input.Items = append(input.Items, service.DebtItemInput{
			ProductID:     productID,
			UnitLabel:     item.UnitLabel,
			Quantity:      item.Quantity,
			PriceOverride: item.PriceOverride,
		})
	}

	if req.DebtDate != "" {
		debtDate, err := parseDate(req.DebtDate)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid debt date format")
			return service.CreateDebtInput{}, false
		}
		input.DebtDate = &debtDate
	}

	if req.DueDate != "" {
		dueDate, err := parseDate(req.DueDate)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid due date format")
			return service.CreateDebtInput{}, false
		}
		input.DueDate = &dueDate
	}

	return input, true
}

func (h *DebtHandler) parseFilter(w http.ResponseWriter, r *http.Request) (repository.DebtFilter, bool) {
	page, pageSize := parsePagination(r)
	filter := repository.DebtFilter{Page: page, PageSize: pageSize}
	query := r.URL.Query()

	if v := query.Get("customer_id"); v != "" {
		customerID, err := uuid.Parse(v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer ID filter")
			return repository.DebtFilter{}, false
		}
		filter.CustomerID = &customerID
	}

	if v := query.Get("status"); v != "" {
		status, ok := domain.ParseDebtStatus(v)
		if !ok {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid status filter")
			return repository.DebtFilter{}, false
		}
		filter.Status = &status
	}

	if v := query.Get("start_date"); v != "" {
		startDate, err := parseDate(v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid start date format")
			return repository.DebtFilter{}, false
		}
		filter.StartDate = &startDate
	}

	if v := query.Get("end_date"); v != "" {
		endDate, err := parseDate(v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid end date format")
			return repository.DebtFilter{}, false
		}
		filter.EndDate = &endDate
	}

	return filter, true
}
