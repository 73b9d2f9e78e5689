package models

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeNoToken             = "NO_TOKEN"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
	CodeAlreadyLiked        = "ALREADY_LIKED"
	CodeNotLiked            = "NOT_LIKED"
	CodeConflict            = "CONFLICT"
	CodeNoGithubProfile     = "NO_GITHUB_PROFILE"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// FieldError is one entry of a field-level validation failure.
type FieldError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

// ErrorResponse is the {msg} failure envelope.
type ErrorResponse struct {
	Msg string `json:"msg"`
}

// ValidationErrorResponse is the {errors: [...]} failure envelope.
type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the error code to an HTTP status.
func (e *AppError) Status() int {
	switch e.Code {
	case CodeNoToken, CodeInvalidToken, CodeForbidden:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeAlreadyLiked, CodeNotLiked, CodeNoGithubProfile:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Predefined error constructors

func NewNoTokenError() *AppError {
	return &AppError{Code: CodeNoToken, Message: "No token, authorization denied"}
}

func NewInvalidTokenError(err error) *AppError {
	return &AppError{Code: CodeInvalidToken, Message: "Token is not valid", Err: err}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// NewValidationError builds a validation failure rendered as an errors list.
func NewValidationError(fields ...FieldError) *AppError {
	msg := "Validation failed"
	if len(fields) > 0 {
		msg = fields[0].Msg
	}
	return &AppError{Code: CodeValidation, Message: msg, Fields: fields}
}

// NewFieldError is shorthand for a single-field body validation failure.
func NewFieldError(param, msg string) *AppError {
	return NewValidationError(FieldError{Msg: msg, Param: param, Location: "body"})
}

func NewAlreadyLikedError() *AppError {
	return &AppError{Code: CodeAlreadyLiked, Message: "Post already liked"}
}

func NewNotLikedError() *AppError {
	return &AppError{Code: CodeNotLiked, Message: "Post has not yet been liked"}
}

func NewConflictError(resource string) *AppError {
	return &AppError{Code: CodeConflict, Message: resource + " was modified concurrently, please retry"}
}

func NewNoGithubProfileError() *AppError {
	return &AppError{Code: CodeNoGithubProfile, Message: "No Github profile found"}
}

func NewUpstreamError(err error) *AppError {
	return &AppError{Code: CodeUpstreamUnavailable, Message: "Github is unavailable", Err: err}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Server error", Err: err}
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError writes the failure envelope for err. Errors that are not
// AppErrors, and internal errors, are logged and rendered without detail.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < http.StatusInternalServerError {
			return c.Status(fiberErr.Code).JSON(ErrorResponse{Msg: fiberErr.Message})
		}
		appErr = NewInternalError(err)
	}

	status := appErr.Status()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed",
			slog.String("code", appErr.Code),
			slog.String("path", c.Path()),
			slog.String("error", appErr.Error()),
		)
	}

	if appErr.Code == CodeValidation && len(appErr.Fields) > 0 {
		return c.Status(status).JSON(ValidationErrorResponse{Errors: appErr.Fields})
	}
	return c.Status(status).JSON(ErrorResponse{Msg: appErr.Message})
}
