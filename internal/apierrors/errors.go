// Package apierrors provides the error taxonomy of the HTTP surface and
// the mapping from domain errors to status codes and response envelopes.
package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Fatihur/api-baru/internal/gateway"
	"github.com/Fatihur/api-baru/internal/session"
	"go.uber.org/zap"
)

// ErrorCode represents application-specific error codes.
type ErrorCode string

const (
	ErrorCodeUnknown        ErrorCode = "UNKNOWN"
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrorCodeRateLimited    ErrorCode = "RATE_LIMITED"

	// Tenant errors
	ErrorCodeInvalidTenant  ErrorCode = "INVALID_TENANT"
	ErrorCodeTenantNotFound ErrorCode = "TENANT_NOT_FOUND"
	ErrorCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden      ErrorCode = "FORBIDDEN"

	// Session errors
	ErrorCodeSessionInit     ErrorCode = "SESSION_INITIALIZATION_FAILURE"
	ErrorCodeNotConnected    ErrorCode = "NOT_CONNECTED"
	ErrorCodeProtocolError   ErrorCode = "PROTOCOL_ERROR"
	ErrorCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	ErrorCode ErrorCode `json:"error_code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`

	// Session context for NOT_CONNECTED, so callers can tell "needs
	// pairing" from "reconnecting".
	State            string `json:"state,omitempty"`
	PairingChallenge string `json:"qr,omitempty"`
}

// Handler writes domain errors as HTTP responses.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new error handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

// HandleError maps a domain error onto the taxonomy and writes the
// response.
func (h *Handler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := r.Header.Get("X-Request-ID")

	var notConnected *session.NotConnectedError
	var initErr *session.InitializationError
	var protoErr *session.ProtocolError

	switch {
	case errors.Is(err, gateway.ErrInvalidTenant):
		h.write(w, http.StatusForbidden, ErrorResponse{
			ErrorCode: ErrorCodeInvalidTenant,
			Message:   "invalid or inactive API key",
			RequestID: requestID,
		})

	case errors.As(err, &notConnected):
		h.write(w, http.StatusConflict, ErrorResponse{
			ErrorCode:        ErrorCodeNotConnected,
			Message:          err.Error(),
			RequestID:        requestID,
			State:            string(notConnected.State),
			PairingChallenge: notConnected.PairingChallenge,
		})

	case errors.As(err, &initErr):
		h.write(w, http.StatusInternalServerError, ErrorResponse{
			ErrorCode: ErrorCodeSessionInit,
			Message:   err.Error(),
			RequestID: requestID,
		})

	case errors.As(err, &protoErr):
		h.write(w, http.StatusBadGateway, ErrorResponse{
			ErrorCode: ErrorCodeProtocolError,
			Message:   err.Error(),
			RequestID: requestID,
		})

	default:
		h.logger.Error("Unhandled request error",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		h.write(w, http.StatusInternalServerError, ErrorResponse{
			ErrorCode: ErrorCodeInternalError,
			Message:   "internal server error",
			RequestID: requestID,
		})
	}
}

// WriteValidationError reports a malformed request body or missing field.
func (h *Handler) WriteValidationError(w http.ResponseWriter, message, requestID string) {
	h.write(w, http.StatusBadRequest, ErrorResponse{
		ErrorCode: ErrorCodeInvalidRequest,
		Message:   message,
		RequestID: requestID,
	})
}

// WriteErrorResponse writes an arbitrary error envelope.
func (h *Handler) WriteErrorResponse(w http.ResponseWriter, statusCode int, errorCode ErrorCode, message, requestID string) {
	h.write(w, statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		RequestID: requestID,
	})
}

func (h *Handler) write(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	resp.Success = false
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
