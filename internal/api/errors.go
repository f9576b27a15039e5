package api

import (
	"errors"
	"net/http"

	"oder/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var compile *domain.CompileError
	var execution *domain.ExecutionError
	var unavailable *domain.UnavailableError
	var timeout *domain.TimeoutError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &compile):
		return http.StatusUnprocessableEntity
	case errors.As(err, &execution):
		return http.StatusBadGateway
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
