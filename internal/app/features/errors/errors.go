// Package errors centralizes HTTP error responses. Handlers report a
// condition once; the logger records the internal detail and sends the
// client a safe JSON body.
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/krcapps/orderdash/internal/app/system/inputval"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorLogger writes error responses and the matching log entries.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// LogServerError responds 500. The internal error goes to the log,
// never to the client.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Error(logMsg,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: userMsg})
}

// LogBadRequest responds 400 for malformed input.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.Log.Warn(logMsg,
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeJSON(w, http.StatusBadRequest, errorBody{Error: userMsg})
}

// LogValidation responds 400 with the offending field named.
func (e *ErrorLogger) LogValidation(w http.ResponseWriter, r *http.Request, verr *inputval.ValidationError) {
	e.Log.Warn("validation failed",
		zap.String("path", r.URL.Path),
		zap.String("field", verr.Field),
		zap.String("message", verr.Message))
	writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Message, Field: verr.Field})
}

// LogNotFound responds 404.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, userMsg string) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: userMsg})
}

// LogConflict responds 409, for uniqueness collisions.
func (e *ErrorLogger) LogConflict(w http.ResponseWriter, r *http.Request, userMsg string) {
	writeJSON(w, http.StatusConflict, errorBody{Error: userMsg})
}

// LogUnauthorized responds 401.
func (e *ErrorLogger) LogUnauthorized(w http.ResponseWriter, r *http.Request, userMsg string) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: userMsg})
}

// LogForbidden responds 403.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, userMsg string) {
	writeJSON(w, http.StatusForbidden, errorBody{Error: userMsg})
}

// WriteJSON sends any payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
