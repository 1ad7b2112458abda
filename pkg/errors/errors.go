package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tms/domain/company"
	"tms/domain/shared"
	"tms/domain/shipmentorder"
)

// ErrorCode Stable machine-readable error discriminator
type ErrorCode string

const (
	// Generic codes
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"

	// Business codes
	CodeCompanyNotFound       ErrorCode = "COMPANY_NOT_FOUND"
	CodeCnpjExists            ErrorCode = "CNPJ_EXISTS"
	CodeShipmentOrderNotFound ErrorCode = "SHIPMENT_ORDER_NOT_FOUND"
	CodeUnknownCompany        ErrorCode = "UNKNOWN_COMPANY"
)

// AppError Application-level error carrying a code and an HTTP mapping
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode HTTP status corresponding to the error code
func (e *AppError) HTTPStatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeCompanyNotFound, CodeShipmentOrderNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeCnpjExists:
		return http.StatusConflict
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeUnknownCompany:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// New Create an error with a code
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap Attach a code and message to an underlying error
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common constructors

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequest, message)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// Is Whether err carries the given code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError Convert any error to an AppError, defaulting to internal
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternal, "internal server error")
}

// MapDomainError Translate domain errors to application errors.
// Matches sentinels first, then the shared taxonomy, then falls back to a
// wrapped internal error so nothing leaks raw to the API layer.
func MapDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, company.ErrCompanyNotFound):
		return New(CodeCompanyNotFound, "company not found")
	case errors.Is(err, company.ErrCnpjExists):
		return New(CodeCnpjExists, "cnpj already registered")
	case errors.Is(err, shipmentorder.ErrShipmentOrderNotFound):
		return New(CodeShipmentOrderNotFound, "shipment order not found")
	case errors.Is(err, shipmentorder.ErrUnknownCompany):
		return New(CodeUnknownCompany, "company is unknown or inactive in this module")
	case errors.Is(err, shared.ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, shared.ErrConflict):
		return Conflict(err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		return Validation(err.Error())
	}

	msg := err.Error()
	if strings.Contains(msg, "not found") {
		return NotFound(msg)
	}
	if strings.Contains(msg, "already exists") {
		return Conflict(msg)
	}
	return Wrap(err, CodeInternal, "internal server error")
}
