package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"warunku-backend/internal/middleware"
	"warunku-backend/internal/repository"
	"warunku-backend/internal/service"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// respondServiceError maps ledger errors onto the HTTP error envelope:
// missing entities become 404, bad input 400, guard violations 409 and
// everything else a generic 500 with the detail kept in the server log.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrCustomerNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrDebtRecordNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrNoItems),
		errors.Is(err, service.ErrNoUnits),
		errors.Is(err, service.ErrUnitNotFound),
		errors.Is(err, service.ErrDuplicateUnitLabel),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrDueBeforeDebtDate):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrPhoneNumberTaken),
		errors.Is(err, service.ErrOutstandingDebts):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())

	default:
		logger.Error("Unhandled service error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parsePagination reads page/limit query parameters with sane bounds
func parsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = defaultPageSize

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		pageSize = v
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}

	return page, pageSize
}

// totalPages computes the page count for a result set
func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// parseDate accepts either RFC 3339 timestamps or plain YYYY-MM-DD dates
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
