// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/respond"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures with request context and writes the
// matching JSON error response.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger wraps logger.
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
	if u, ok := auth.CurrentUser(r); ok {
		fs = append(fs, zap.String("user_id", u.ID), zap.String("username", u.Username))
	}
	return fs
}

// LogServerError logs at error level and answers 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg, e.fields(r, err)...)
	respond.Error(w, http.StatusInternalServerError, "internal_error", userMsg)
}

// LogBadRequest logs at warn level and answers 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Warn(msg, e.fields(r, err)...)
	respond.Error(w, http.StatusBadRequest, "bad_request", userMsg)
}

// Unavailable logs at warn level and answers 503: the document store could
// not be reached or answered too slowly.
func (e *ErrorLogger) Unavailable(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e.Log.Warn(msg, e.fields(r, err)...)
	respond.Error(w, http.StatusServiceUnavailable, "connectivity_error",
		"Não foi possível acessar o banco de dados. Verifique a conexão e tente novamente.")
}

// Validation answers 422 with the per-field messages.
func (e *ErrorLogger) Validation(w http.ResponseWriter, r *http.Request, msg string, fields map[string]string) {
	e.Log.Debug("validation failed", e.fields(r, nil)...)
	respond.JSON(w, http.StatusUnprocessableEntity, respond.ErrorBody{
		Error:   "validation_error",
		Message: msg,
		Fields:  fields,
	})
}
