// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Response is the envelope every endpoint writes.
type Response struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       any             `json:"data,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

var exposeInternalErrors atomic.Bool

// ExposeInternalErrors controls whether 500 responses carry the underlying
// error text. Only enabled in development.
func ExposeInternalErrors(enabled bool) {
	exposeInternalErrors.Store(enabled)
}

func JSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func Paginated[T any](w http.ResponseWriter, message string, page Page[T]) {
	JSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    page.Items,
		Pagination: &PaginationMeta{
			CurrentPage: page.CurrentPage,
			TotalPages:  page.TotalPages,
			TotalCount:  page.TotalCount,
			Limit:       page.Limit,
			HasNext:     page.HasNext(),
			HasPrev:     page.HasPrev(),
		},
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, BadRequestError(message))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)

	body := Response{Success: false, Message: "internal server error"}
	if exposeInternalErrors.Load() && err != nil {
		body.Errors = []string{err.Error()}
	}
	JSON(w, http.StatusInternalServerError, body)
}

// JSONError is the boundary translator: AppErrors render as themselves,
// known sentinels map onto the taxonomy, everything else is a 500.
func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = classify(err)
	}
	if appErr == nil {
		InternalServerError(w, err)
		return
	}

	JSON(w, appErr.StatusCode, Response{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Details,
	})
}

func classify(err error) *AppError {
	switch {
	case errors.Is(err, ErrTimeout):
		return ServiceUnavailableError()
	case errors.Is(err, ErrNotFound):
		return NotFoundError("resource")
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("insufficient permissions")
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("")
	case errors.Is(err, ErrTokenExpired):
		return TokenExpiredError()
	case errors.Is(err, ErrTokenRevoked):
		return TokenRevokedError()
	case errors.Is(err, ErrTokenInvalid):
		return TokenInvalidError()
	case errors.Is(err, ErrDuplicateKey):
		return ConflictError("resource already exists")
	case errors.Is(err, ErrForeignKey):
		return BadRequestError("referenced resource does not exist")
	case errors.Is(err, ErrInvalidInput):
		return BadRequestError("required field is missing or invalid")
	}
	return nil
}
