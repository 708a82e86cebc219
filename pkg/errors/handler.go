package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Fields    map[string][]string    `json:"fields,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler handles errors and sends appropriate HTTP responses
type ErrorHandler struct {
	logger        *zap.Logger
	debug         bool
	defaultStatus int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger:        logger,
		debug:         debug,
		defaultStatus: http.StatusInternalServerError,
	}
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	requestID := r.Header.Get("X-Request-ID")

	var status int
	var response ErrorResponse

	switch e := err.(type) {
	case *ValidationErrors:
		// Field-addressable validation failures keep their per-field map so
		// the client can attribute messages to form fields
		status = http.StatusBadRequest
		response = ErrorResponse{
			Error:     true,
			Type:      string(DomainValidationError),
			Message:   e.Error(),
			Fields:    e.ToMap(),
			RequestID: requestID,
		}
	case *DomainError:
		status = e.StatusCode
		response = ErrorResponse{
			Error:     true,
			Type:      string(e.Type),
			Message:   e.Message,
			Code:      e.Code,
			Details:   e.Details,
			RequestID: requestID,
		}
	default:
		if appErr := GetAppError(err); appErr != nil {
			status = appErr.HTTPStatus
			if status == 0 {
				status = h.defaultStatus
			}
			response = ErrorResponse{
				Error:     true,
				Type:      string(appErr.Type),
				Message:   appErr.Message,
				Code:      appErr.Code,
				Details:   appErr.Details,
				RequestID: requestID,
			}
			if h.debug && appErr.StackTrace != "" {
				if response.Details == nil {
					response.Details = make(map[string]interface{})
				}
				response.Details["stack_trace"] = appErr.StackTrace
			}
		} else {
			status = h.defaultStatus
			response = ErrorResponse{
				Error:     true,
				Type:      string(ErrorTypeInternal),
				Message:   "Internal server error",
				RequestID: requestID,
			}
			if h.debug {
				response.Message = err.Error()
			}
		}
	}

	h.logError(r, err, status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
		h.logger.Error("Failed to encode error response", zap.Error(encErr))
	}
}

// logError logs the error with request context
func (h *ErrorHandler) logError(r *http.Request, err error, status int) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}

	if status >= 500 {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Warn("Request rejected", fields...)
	}
}
