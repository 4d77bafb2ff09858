// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/hrms/internal/app/system/auth"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/app/system/requestid"
	"go.uber.org/zap"
)

// Body is the JSON error envelope every handler answers with.
type Body struct {
	Error  string                `json:"error"`
	Fields []inputval.FieldError `json:"fields,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteValidation answers 422 with one entry per invalid field.
func WriteValidation(w http.ResponseWriter, res inputval.Result) {
	WriteJSON(w, http.StatusUnprocessableEntity, Body{
		Error:  "Validation failed.",
		Fields: res.Errors,
	})
}

// ErrorLogger logs a failure with request context and answers with a
// user-facing JSON message.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	if id := requestid.FromContext(r.Context()); id != "" {
		fs = append(fs, zap.String("request_id", id))
	}
	if u, ok := auth.CurrentUser(r); ok {
		fs = append(fs, zap.String("user_id", u.ID), zap.String("tenant_id", u.TenantID))
	}
	return fs
}

// LogServerError logs at error level and answers 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg, e.fields(r, err)...)
	if userMsg == "" {
		userMsg = "An internal error occurred."
	}
	WriteJSON(w, http.StatusInternalServerError, Body{Error: userMsg})
}

// LogBadRequest logs at warn level and answers 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Warn(msg, e.fields(r, err)...)
	if userMsg == "" {
		userMsg = "Bad request."
	}
	WriteJSON(w, http.StatusBadRequest, Body{Error: userMsg})
}

// LogNotFound logs at info level and answers 404.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Info(msg, e.fields(r, err)...)
	if userMsg == "" {
		userMsg = "Not found."
	}
	WriteJSON(w, http.StatusNotFound, Body{Error: userMsg})
}

// LogForbidden logs at warn level and answers 403.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string, userMsg string) {
	e.Log.Warn(msg, e.fields(r, nil)...)
	if userMsg == "" {
		userMsg = "You don't have permission to do that."
	}
	WriteJSON(w, http.StatusForbidden, Body{Error: userMsg})
}

// Handler serves the error endpoints the auth middleware redirects to.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden handles GET /forbidden.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusForbidden, Body{Error: "You don't have permission to view this page."})
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusUnauthorized, Body{Error: "Please sign in to continue."})
}

// NotFound is the router's fallback handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, Body{Error: "Not found."})
}
