package transport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	errors "github.com/frahmantamala/wanderhub/internal"
	"github.com/frahmantamala/wanderhub/pkg/logger"
	"github.com/go-chi/chi"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, h.Logger, status, data)
}

// WriteError renders any failure with the uniform error body.
func (h *BaseHandler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	WriteError(w, r, h.Logger, err)
}

// HandleServiceError logs and renders an error returned by a service call.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	WriteError(w, r, h.Logger, err)
}

func (h *BaseHandler) NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON reads the request body into dst. Malformed bodies are BAD_REQUEST.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.NewBadRequestError("Request body is required", errors.ErrCodeBadRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return errors.NewBadRequestError("Request body is required", errors.ErrCodeBadRequest)
		}
		return errors.NewBadRequestError("Invalid request body", errors.ErrCodeBadRequest).WithCause(err)
	}
	return nil
}

// PathID parses a positive integer URL parameter.
func (h *BaseHandler) PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.NewValidationFieldError(name, name+" must be a positive integer", errors.ErrCodeInvalidField)
	}
	return id, nil
}

// PageParams reads ?page= and ?limit=. page defaults to 1 and must be >= 1; limit
// defaults to DefaultPageLimit and must be within 1..MaxPageLimit.
func (h *BaseHandler) PageParams(r *http.Request) (page, limit int, err error) {
	page, limit = 1, DefaultPageLimit
	var details []errors.ValidationError

	q := r.URL.Query()
	if raw := q.Get("page"); raw != "" {
		v, convErr := strconv.Atoi(raw)
		if convErr != nil || v < 1 {
			details = append(details, errors.ValidationError{
				Field:   "page",
				Message: "page must be an integer greater than or equal to 1",
				Code:    string(errors.ErrCodeInvalidField),
			})
		} else {
			page = v
		}
	}
	if raw := q.Get("limit"); raw != "" {
		v, convErr := strconv.Atoi(raw)
		if convErr != nil || v < 1 || v > MaxPageLimit {
			details = append(details, errors.ValidationError{
				Field:   "limit",
				Message: "limit must be an integer between 1 and " + strconv.Itoa(MaxPageLimit),
				Code:    string(errors.ErrCodeInvalidField),
			})
		} else {
			limit = v
		}
	}

	if len(details) > 0 {
		return 0, 0, errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: details})
	}
	return page, limit, nil
}

// WriteJSON is the handler-independent form used by middleware.
func WriteJSON(w http.ResponseWriter, lg *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		lg.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError classifies err and writes {"error","message","details"} with the kind's
// status. Internal failures are logged with the request id; their cause is never sent.
func WriteError(w http.ResponseWriter, r *http.Request, lg *slog.Logger, err error) {
	appErr := errors.FromError(err)
	if lg == nil {
		lg = logger.From(r.Context())
	}

	requestID := errors.RequestIDFromContext(r.Context())
	if appErr.Kind == errors.KindInternal {
		lg.Error("internal error",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	} else {
		lg.Debug("request failed",
			"request_id", requestID,
			"kind", appErr.Kind,
			"code", appErr.Code,
			"message", appErr.GetDetailedMessage())
	}

	status, body := appErr.ToHTTPResponse()
	WriteJSON(w, lg, status, body)
}

// ExtractBearerToken returns the credential of an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
func ExtractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
