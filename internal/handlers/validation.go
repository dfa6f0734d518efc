package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/BradenHooton/inkwell/internal/models"
	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON request body into dst. It writes a 400 and returns
// false when the body is malformed. An empty body decodes to the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// writeValidationError writes a 422 when err carries field detail and
// reports whether it did.
func writeValidationError(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, models.ErrValidation) {
		return false
	}

	var fields []pkghttp.FieldError
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		for _, f := range vErr.Fields {
			fields = append(fields, pkghttp.FieldError{Field: f.Field, Message: f.Message})
		}
	}
	pkghttp.WriteValidationError(w, "Request validation failed", fields)
	return true
}

// writeServiceError maps the error kinds shared by every endpoint. Endpoint
// specific kinds are handled by the caller first.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case writeValidationError(w, err):
	case errors.Is(err, models.ErrServiceUnavailable):
		pkghttp.WriteServiceUnavailable(w, "Service temporarily unavailable")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Unauthorized")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Forbidden")
	case errors.Is(err, models.ErrNotificationFailed):
		pkghttp.WriteError(w, http.StatusInternalServerError, "notification_dispatch_failed", "Notification could not be delivered")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
