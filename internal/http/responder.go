package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/example/room-scheduler/internal/application"
	"github.com/example/room-scheduler/internal/logging"
)

var (
	errBadRequestBody = errors.New("request body is not valid JSON")
	errMissingFile    = errors.New("multipart field \"file\" is required")
	errUploadTooLarge = errors.New("uploaded file is too large")
	errInvalidMoment  = errors.New("day and time must be supplied together and time must be HH:MM")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (rs responder) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	render.Status(r, status)
	render.JSON(w, r, payload)
}

func (rs responder) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		rs.loggerFor(r.Context()).ErrorContext(r.Context(), "request failed", "status", status, "error", err)
	}

	rs.writeJSON(w, r, status, errorResponse{ErrorCode: statusCode(status), Message: message})
}

func (rs responder) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		rs.writeError(w, r, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr):
		rs.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: statusCode(http.StatusUnprocessableEntity),
			Message:   statusMessage(http.StatusUnprocessableEntity),
			Errors:    vErr.FieldErrors,
		})
	case errors.Is(err, application.ErrConflict):
		rs.writeJSON(w, r, http.StatusConflict, errorResponse{
			ErrorCode: statusCode(http.StatusConflict),
			Message:   statusMessage(http.StatusConflict),
		})
	case errors.Is(err, application.ErrStoreBusy):
		w.Header().Set("Retry-After", "1")
		rs.writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{
			ErrorCode: statusCode(http.StatusServiceUnavailable),
			Message:   statusMessage(http.StatusServiceUnavailable),
		})
	case errors.Is(err, application.ErrNotFound):
		rs.writeJSON(w, r, http.StatusNotFound, errorResponse{
			ErrorCode: statusCode(http.StatusNotFound),
			Message:   statusMessage(http.StatusNotFound),
		})
	default:
		rs.writeJSON(w, r, http.StatusInternalServerError, errorResponse{
			ErrorCode: statusCode(http.StatusInternalServerError),
			Message:   statusMessage(http.StatusInternalServerError),
		})
	}
}

func (rs responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return rs.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request could not be understood."
	case http.StatusNotFound:
		return "The requested resource does not exist."
	case http.StatusConflict:
		return "The booking overlaps an existing booking."
	case http.StatusRequestEntityTooLarge:
		return "The request body is too large."
	case http.StatusUnprocessableEntity:
		return "The submitted values are invalid."
	case http.StatusServiceUnavailable:
		return "The schedule is being updated, try again shortly."
	default:
		return "An internal server error occurred."
	}
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "BOOKING_CONFLICT"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusUnprocessableEntity:
		return "VALIDATION_FAILED"
	case http.StatusServiceUnavailable:
		return "STORE_BUSY"
	default:
		return "INTERNAL"
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflicts []conflictDTO     `json:"conflicts,omitempty"`
}
