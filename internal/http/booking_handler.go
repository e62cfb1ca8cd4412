package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/example/room-scheduler/internal/application"
	"github.com/example/room-scheduler/internal/scheduler"
)

const (
	xlsxContentType        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultMaxUploadBytes  = 10 << 20
	bookingsExportFilename = "jadwal.xlsx"
	gridExportFilename     = "grid.xlsx"
)

type bookingService interface {
	AddBooking(ctx context.Context, params application.AddBookingParams) (application.Booking, []application.ConflictWarning, error)
	ListBookings(ctx context.Context) ([]application.Booking, error)
	ImportBookings(ctx context.Context, r io.Reader) (application.ImportResult, error)
	ExportBookings(ctx context.Context, w io.Writer) error
	Grid(ctx context.Context) (*scheduler.Grid, error)
	ExportGrid(ctx context.Context, w io.Writer) error
	LiveStatus(ctx context.Context) (scheduler.LiveStatus, error)
	LiveStatusAt(ctx context.Context, day string, at scheduler.ClockTime) (scheduler.LiveStatus, error)
}

// BookingHandler serves booking, grid and live status endpoints.
type BookingHandler struct {
	service        bookingService
	responder      responder
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewBookingHandler builds a handler. maxUploadBytes caps import uploads; values <= 0
// fall back to 10 MiB.
func NewBookingHandler(service bookingService, logger *slog.Logger, maxUploadBytes int64) *BookingHandler {
	base := defaultLogger(logger)
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &BookingHandler{service: service, responder: newResponder(base), logger: base, maxUploadBytes: maxUploadBytes}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

// List returns every stored booking.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	logger := h.log(r.Context(), "List")
	bookings, err := h.service.ListBookings(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err)
		return
	}

	logger.With("result_count", len(bookings)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(w, r, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

// Create admits one booking.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req bookingRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(w, r, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "room", req.Room, "day", req.Day)
	booking, warnings, err := h.service.AddBooking(r.Context(), application.AddBookingParams{Input: req.toInput()})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking admission failed", "error", err, "error_kind", application.ErrorKind(err))
		if errors.Is(err, application.ErrConflict) {
			h.responder.writeJSON(w, r, http.StatusConflict, errorResponse{
				ErrorCode: statusCode(http.StatusConflict),
				Message:   statusMessage(http.StatusConflict),
				Conflicts: toConflictDTOs(warnings),
			})
			return
		}
		h.responder.handleServiceError(w, r, err)
		return
	}

	logger.With("booking_id", booking.ID, "conflicts", len(warnings)).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(w, r, http.StatusCreated, bookingResponse{
		Booking:   toBookingDTO(booking),
		Conflicts: toConflictDTOs(warnings),
	})
}

// Import replaces the collection with the bookings of an uploaded workbook.
func (h *BookingHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	logger := h.log(r.Context(), "Import")
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.With("error_kind", "too_large").ErrorContext(r.Context(), "upload exceeds limit", "limit", h.maxUploadBytes)
			h.responder.writeError(w, r, http.StatusRequestEntityTooLarge, errUploadTooLarge)
			return
		}
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse upload", "error", err)
		h.responder.writeError(w, r, http.StatusBadRequest, errMissingFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "upload has no file field", "error", err)
		h.responder.writeError(w, r, http.StatusBadRequest, errMissingFile)
		return
	}
	defer file.Close()

	logger = logger.With("filename", header.Filename, "size", header.Size)
	result, err := h.service.ImportBookings(r.Context(), file)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking import failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err)
		return
	}

	logger.With("result_count", result.Count).InfoContext(r.Context(), "bookings imported")
	h.responder.writeJSON(w, r, http.StatusOK, importResponse{
		Imported: result.Count,
		Excluded: toExclusionDTO(result.Excluded),
	})
}

// Export downloads the stored bookings as a workbook.
func (h *BookingHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	h.writeWorkbook(w, r, "Export", bookingsExportFilename, h.service.ExportBookings)
}

// ExportGrid downloads the projected grid as a workbook.
func (h *BookingHandler) ExportGrid(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	h.writeWorkbook(w, r, "ExportGrid", gridExportFilename, h.service.ExportGrid)
}

// writeWorkbook buffers the encoded workbook so service errors still map to a status.
func (h *BookingHandler) writeWorkbook(w http.ResponseWriter, r *http.Request, operation, filename string, encode func(context.Context, io.Writer) error) {
	logger := h.log(r.Context(), operation)

	var buf bytes.Buffer
	if err := encode(r.Context(), &buf); err != nil {
		logger.ErrorContext(r.Context(), "workbook export failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.ErrorContext(r.Context(), "failed to write workbook", "error", err)
		return
	}
	logger.InfoContext(r.Context(), "workbook exported", "filename", filename)
}

// Grid returns the projected grid, optionally narrowed by the room and day query
// parameters.
func (h *BookingHandler) Grid(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	room := strings.TrimSpace(r.URL.Query().Get("room"))
	day := strings.TrimSpace(r.URL.Query().Get("day"))
	logger := h.log(r.Context(), "Grid", "room_filter", room, "day_filter", day)

	grid, err := h.service.Grid(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "grid projection failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err)
		return
	}

	resp, ok := toGridDTO(grid, room, day)
	if !ok {
		logger.With("error_kind", "not_found").InfoContext(r.Context(), "grid filter matched nothing")
		h.responder.handleServiceError(w, r, application.ErrNotFound)
		return
	}

	logger.With("rows", len(resp.Rows)).InfoContext(r.Context(), "grid served")
	h.responder.writeJSON(w, r, http.StatusOK, resp)
}

// LiveStatus reports current room usage. Supplying both day and time queries the
// given moment instead.
func (h *BookingHandler) LiveStatus(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	query := r.URL.Query()
	day := strings.TrimSpace(query.Get("day"))
	at := strings.TrimSpace(query.Get("time"))
	logger := h.log(r.Context(), "LiveStatus", "day", day, "time", at)

	var (
		status scheduler.LiveStatus
		err    error
	)
	switch {
	case day == "" && at == "":
		status, err = h.service.LiveStatus(r.Context())
	case day == "" || at == "":
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "incomplete moment override")
		h.responder.writeError(w, r, http.StatusBadRequest, errInvalidMoment)
		return
	default:
		clock, parseErr := scheduler.ParseClockTime(at)
		if parseErr != nil {
			logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "invalid time override", "error", parseErr)
			h.responder.writeError(w, r, http.StatusBadRequest, errInvalidMoment)
			return
		}
		status, err = h.service.LiveStatusAt(r.Context(), day, clock)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "live status failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(w, r, err)
		return
	}

	logger.DebugContext(r.Context(), "live status served", "occupied", status.Occupied, "maintenance", status.Maintenance)
	h.responder.writeJSON(w, r, http.StatusOK, toLiveStatusDTO(status))
}

type bookingRequest struct {
	Instructor string `json:"instructor"`
	CourseName string `json:"course_name"`
	Credits    string `json:"credits"`
	Section    string `json:"section"`
	Day        string `json:"day"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Building   string `json:"building"`
	Floor      string `json:"floor"`
	Room       string `json:"room"`
	ClassType  string `json:"class_type"`
	Kind       string `json:"kind"`
}

func (r bookingRequest) toInput() application.BookingInput {
	return application.BookingInput{
		Instructor: r.Instructor,
		CourseName: r.CourseName,
		Credits:    r.Credits,
		Section:    r.Section,
		Day:        r.Day,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Building:   r.Building,
		Floor:      r.Floor,
		Room:       r.Room,
		ClassType:  r.ClassType,
		Kind:       scheduler.Kind(r.Kind),
	}
}

type bookingResponse struct {
	Booking   bookingDTO    `json:"booking"`
	Conflicts []conflictDTO `json:"conflicts"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type importResponse struct {
	Imported int            `json:"imported"`
	Excluded map[string]int `json:"excluded"`
}

type bookingDTO struct {
	ID         string `json:"id"`
	Instructor string `json:"instructor"`
	CourseName string `json:"course_name"`
	Credits    string `json:"credits"`
	Section    string `json:"section"`
	Day        string `json:"day"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Building   string `json:"building"`
	Floor      string `json:"floor"`
	Room       string `json:"room"`
	ClassType  string `json:"class_type"`
	Kind       string `json:"kind"`
	CreatedAt  string `json:"created_at,omitempty"`
}

type conflictDTO struct {
	BookingID string `json:"booking_id"`
	Type      string `json:"type"`
	Room      string `json:"room"`
	Day       string `json:"day"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

func toBookingDTO(b application.Booking) bookingDTO {
	dto := bookingDTO{
		ID:         b.ID,
		Instructor: b.Instructor,
		CourseName: b.CourseName,
		Credits:    b.Credits,
		Section:    b.Section,
		Day:        b.Day,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Building:   b.Building,
		Floor:      b.Floor,
		Room:       b.Room,
		ClassType:  b.ClassType,
		Kind:       string(b.Kind),
	}
	if !b.CreatedAt.IsZero() {
		dto.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

func toBookingDTOs(bookings []application.Booking) []bookingDTO {
	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	return out
}

func toConflictDTOs(warnings []application.ConflictWarning) []conflictDTO {
	out := make([]conflictDTO, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, conflictDTO{
			BookingID: w.BookingID,
			Type:      w.Type,
			Room:      w.Room,
			Day:       w.Day,
			Start:     w.Start,
			End:       w.End,
		})
	}
	return out
}

func toExclusionDTO(excluded scheduler.Exclusions) map[string]int {
	out := make(map[string]int, len(excluded))
	for reason, n := range excluded {
		if n > 0 {
			out[string(reason)] = n
		}
	}
	return out
}
