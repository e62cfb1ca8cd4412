package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/room-scheduler/internal/application"
	"github.com/example/room-scheduler/internal/catalog"
	"github.com/example/room-scheduler/internal/scheduler"
)

type bookingServiceStub struct {
	addParams application.AddBookingParams
	addResult application.Booking
	addWarns  []application.ConflictWarning
	addErr    error

	bookings []application.Booking
	listErr  error

	imported     []byte
	importResult application.ImportResult
	importErr    error

	exportBody string
	exportErr  error

	grid    *scheduler.Grid
	gridErr error

	live       scheduler.LiveStatus
	liveErr    error
	liveAtDay  string
	liveAtTime scheduler.ClockTime
	liveAtUsed bool
}

func (s *bookingServiceStub) AddBooking(_ context.Context, params application.AddBookingParams) (application.Booking, []application.ConflictWarning, error) {
	s.addParams = params
	return s.addResult, s.addWarns, s.addErr
}

func (s *bookingServiceStub) ListBookings(context.Context) ([]application.Booking, error) {
	return s.bookings, s.listErr
}

func (s *bookingServiceStub) ImportBookings(_ context.Context, r io.Reader) (application.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return application.ImportResult{}, err
	}
	s.imported = data
	return s.importResult, s.importErr
}

func (s *bookingServiceStub) ExportBookings(_ context.Context, w io.Writer) error {
	if s.exportErr != nil {
		return s.exportErr
	}
	_, err := io.WriteString(w, s.exportBody)
	return err
}

func (s *bookingServiceStub) Grid(context.Context) (*scheduler.Grid, error) {
	return s.grid, s.gridErr
}

func (s *bookingServiceStub) ExportGrid(ctx context.Context, w io.Writer) error {
	return s.ExportBookings(ctx, w)
}

func (s *bookingServiceStub) LiveStatus(context.Context) (scheduler.LiveStatus, error) {
	return s.live, s.liveErr
}

func (s *bookingServiceStub) LiveStatusAt(_ context.Context, day string, at scheduler.ClockTime) (scheduler.LiveStatus, error) {
	s.liveAtUsed = true
	s.liveAtDay = day
	s.liveAtTime = at
	return s.live, s.liveErr
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(service bookingService) http.Handler {
	logger := quietLogger()
	return NewRouter(RouterConfig{
		Bookings: NewBookingHandler(service, logger, 1<<20),
		Catalog:  NewCatalogHandler(catalog.MustDefault(), logger),
		Logger:   logger,
	})
}

func serve(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	rec := serve(t, newTestRouter(&bookingServiceStub{}), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody[map[string]string](t, rec); body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestCatalogHandler(t *testing.T) {
	rec := serve(t, newTestRouter(&bookingServiceStub{}), httptest.NewRequest(http.MethodGet, "/catalog", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeBody[catalogResponse](t, rec)
	if len(resp.Rooms) != len(catalog.DefaultRooms) || len(resp.Days) != 6 {
		t.Fatalf("unexpected catalog %+v", resp)
	}
	breaks := 0
	for _, slot := range resp.Slots {
		if slot.Break {
			breaks++
			if slot.Label != "12:00-13:00" || slot.Start != "12:00" || slot.End != "13:00" {
				t.Fatalf("unexpected break slot %+v", slot)
			}
		}
	}
	if breaks != 1 {
		t.Fatalf("expected one break slot, got %d", breaks)
	}
}

func TestBookingHandlerList(t *testing.T) {
	t.Run("returns bookings in stored order", func(t *testing.T) {
		created := time.Date(2024, 3, 4, 2, 15, 0, 0, time.UTC)
		stub := &bookingServiceStub{bookings: []application.Booking{
			{ID: "B2", Room: "B4A", Day: "SENIN", StartTime: "07:00", EndTime: "08:40", Kind: scheduler.KindClass, CreatedAt: created},
			{ID: "B1", Room: "B4B", Day: "SELASA"},
		}}

		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodGet, "/bookings", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decodeBody[listBookingsResponse](t, rec)
		if len(resp.Bookings) != 2 || resp.Bookings[0].ID != "B2" || resp.Bookings[1].ID != "B1" {
			t.Fatalf("unexpected bookings %+v", resp.Bookings)
		}
		if resp.Bookings[0].CreatedAt != "2024-03-04T02:15:00Z" || resp.Bookings[0].Kind != "class" {
			t.Fatalf("unexpected first booking %+v", resp.Bookings[0])
		}
		if resp.Bookings[1].CreatedAt != "" {
			t.Fatalf("expected zero created_at to be omitted, got %q", resp.Bookings[1].CreatedAt)
		}
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		rec := serve(t, newTestRouter(&bookingServiceStub{}), httptest.NewRequest(http.MethodGet, "/bookings", nil))
		if !strings.Contains(rec.Body.String(), `"bookings":[]`) {
			t.Fatalf("expected empty array, got %s", rec.Body.String())
		}
	})

	t.Run("store failure maps to 500", func(t *testing.T) {
		stub := &bookingServiceStub{listErr: errors.New("disk gone")}
		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodGet, "/bookings", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "disk gone") {
			t.Fatalf("internal error leaked into response: %s", rec.Body.String())
		}
	})
}

func TestBookingHandlerCreate(t *testing.T) {
	body := `{"instructor":"Budi","course_name":"Algoritma","day":"Senin","start_time":"07:00","end_time":"08:40","room":"B4A","kind":"class"}`

	t.Run("admits booking with warnings", func(t *testing.T) {
		stub := &bookingServiceStub{
			addResult: application.Booking{ID: "ABCDEF123456", Room: "B4A", Day: "Senin", StartTime: "07:00", EndTime: "08:40", Kind: scheduler.KindClass},
			addWarns:  []application.ConflictWarning{{BookingID: "B1", Type: "room", Room: "B4A", Day: "SENIN", Start: "07:50", End: "08:40"}},
		}

		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.addParams.Input.CourseName != "Algoritma" || stub.addParams.Input.Kind != scheduler.KindClass || stub.addParams.Input.Room != "B4A" {
			t.Fatalf("unexpected input %+v", stub.addParams.Input)
		}
		resp := decodeBody[bookingResponse](t, rec)
		if resp.Booking.ID != "ABCDEF123456" {
			t.Fatalf("unexpected booking %+v", resp.Booking)
		}
		if len(resp.Conflicts) != 1 || resp.Conflicts[0].BookingID != "B1" || resp.Conflicts[0].Start != "07:50" {
			t.Fatalf("unexpected conflicts %+v", resp.Conflicts)
		}
	})

	t.Run("no warnings encode as empty array", func(t *testing.T) {
		stub := &bookingServiceStub{addResult: application.Booking{ID: "X"}}
		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
		if !strings.Contains(rec.Body.String(), `"conflicts":[]`) {
			t.Fatalf("expected empty conflicts array, got %s", rec.Body.String())
		}
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		stub := &bookingServiceStub{}
		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"room":`)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if resp := decodeBody[errorResponse](t, rec); resp.ErrorCode != "BAD_REQUEST" || resp.Message != errBadRequestBody.Error() {
			t.Fatalf("unexpected error response %+v", resp)
		}
	})

	t.Run("validation errors map to 422", func(t *testing.T) {
		stub := &bookingServiceStub{addErr: &application.ValidationError{FieldErrors: map[string]string{"end_time": "end time must be after start time"}}}
		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		resp := decodeBody[errorResponse](t, rec)
		if resp.ErrorCode != "VALIDATION_FAILED" || resp.Errors["end_time"] != "end time must be after start time" {
			t.Fatalf("unexpected error response %+v", resp)
		}
	})

	t.Run("rejected overlap maps to 409 with conflicts", func(t *testing.T) {
		stub := &bookingServiceStub{
			addWarns: []application.ConflictWarning{{BookingID: "B7", Type: "room", Room: "B4A", Day: "SENIN", Start: "07:00", End: "08:40"}},
			addErr:   fmt.Errorf("%w: room B4A", application.ErrConflict),
		}
		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		resp := decodeBody[errorResponse](t, rec)
		if resp.ErrorCode != "BOOKING_CONFLICT" || len(resp.Conflicts) != 1 || resp.Conflicts[0].BookingID != "B7" {
			t.Fatalf("unexpected error response %+v", resp)
		}
	})

	t.Run("busy store maps to 503", func(t *testing.T) {
		stub := &bookingServiceStub{addErr: fmt.Errorf("lock: %w", application.ErrStoreBusy)}
		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") == "" {
			t.Fatalf("expected Retry-After header")
		}
	})
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/bookings/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestBookingHandlerImport(t *testing.T) {
	t.Run("passes the uploaded file to the service", func(t *testing.T) {
		stub := &bookingServiceStub{importResult: application.ImportResult{
			Count:    3,
			Excluded: scheduler.Exclusions{scheduler.ExcludedInvalidTime: 1, scheduler.ExcludedUnknownDay: 0},
		}}
		rec := serve(t, newTestRouter(stub), multipartUpload(t, "file", "jadwal.xlsx", []byte("workbook-bytes")))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if string(stub.imported) != "workbook-bytes" {
			t.Fatalf("service received %q", stub.imported)
		}
		resp := decodeBody[importResponse](t, rec)
		if resp.Imported != 3 || resp.Excluded["invalid_time"] != 1 {
			t.Fatalf("unexpected import response %+v", resp)
		}
		if _, ok := resp.Excluded["unknown_day"]; ok {
			t.Fatalf("zero exclusion counts should be omitted: %+v", resp.Excluded)
		}
	})

	t.Run("missing file field is rejected", func(t *testing.T) {
		stub := &bookingServiceStub{}
		rec := serve(t, newTestRouter(stub), multipartUpload(t, "upload", "jadwal.xlsx", []byte("x")))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.imported != nil {
			t.Fatalf("service must not be called")
		}
	})

	t.Run("non multipart body is rejected", func(t *testing.T) {
		rec := serve(t, newTestRouter(&bookingServiceStub{}), httptest.NewRequest(http.MethodPost, "/bookings/import", strings.NewReader("plain")))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("undecodable workbook maps to 422", func(t *testing.T) {
		stub := &bookingServiceStub{importErr: &application.ValidationError{FieldErrors: map[string]string{"file": "not a workbook"}}}
		rec := serve(t, newTestRouter(stub), multipartUpload(t, "file", "jadwal.xlsx", []byte("junk")))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})
}

func TestBookingHandlerExport(t *testing.T) {
	for _, path := range []string{"/bookings/export", "/grid/export"} {
		t.Run(path, func(t *testing.T) {
			stub := &bookingServiceStub{exportBody: "PK-workbook"}
			rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if rec.Header().Get("Content-Type") != xlsxContentType {
				t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
			}
			if !strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;") {
				t.Fatalf("expected attachment disposition, got %q", rec.Header().Get("Content-Disposition"))
			}
			if rec.Body.String() != "PK-workbook" {
				t.Fatalf("unexpected body %q", rec.Body.String())
			}
		})
	}

	t.Run("empty collection maps to 404", func(t *testing.T) {
		stub := &bookingServiceStub{exportErr: fmt.Errorf("export: %w", application.ErrNotFound)}
		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodGet, "/bookings/export", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if rec.Header().Get("Content-Disposition") != "" {
			t.Fatalf("error response must not be an attachment")
		}
	})
}

func testGrid() *scheduler.Grid {
	return scheduler.ProjectGrid([]scheduler.Booking{
		{ID: "a", Room: "B4A", Day: "SENIN", StartTime: "07:00", EndTime: "07:50", CourseName: "Algoritma", Instructor: "Budi"},
		{ID: "x", Room: "LAB9", Day: "SENIN", StartTime: "07:00", EndTime: "07:50"},
	}, catalog.MustDefault().Layout())
}

func TestBookingHandlerGrid(t *testing.T) {
	layout := catalog.MustDefault().Layout()

	t.Run("full grid", func(t *testing.T) {
		rec := serve(t, newTestRouter(&bookingServiceStub{grid: testGrid()}), httptest.NewRequest(http.MethodGet, "/grid", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decodeBody[gridResponse](t, rec)
		if len(resp.Rows) != len(layout.Rooms)*len(layout.Days) {
			t.Fatalf("expected %d rows, got %d", len(layout.Rooms)*len(layout.Days), len(resp.Rows))
		}
		if resp.Excluded["unknown_room"] != 1 {
			t.Fatalf("expected exclusion count, got %+v", resp.Excluded)
		}
	})

	t.Run("room and day filters", func(t *testing.T) {
		rec := serve(t, newTestRouter(&bookingServiceStub{grid: testGrid()}), httptest.NewRequest(http.MethodGet, "/grid?room=b4a&day=senin", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		resp := decodeBody[gridResponse](t, rec)
		if len(resp.Rows) != 1 || resp.Rows[0].Room != "B4A" || resp.Rows[0].Day != "SENIN" {
			t.Fatalf("unexpected rows %+v", resp.Rows)
		}
		first := resp.Rows[0].Cells[0]
		if first.Status != "occupied" || first.Info != "Algoritma - Budi" || len(first.Contributors) != 1 || !first.Contributors[0].Applied {
			t.Fatalf("unexpected first cell %+v", first)
		}
		if len(resp.Rows[0].Cells) != len(layout.Slots) {
			t.Fatalf("expected %d cells, got %d", len(layout.Slots), len(resp.Rows[0].Cells))
		}
	})

	t.Run("unknown filter maps to 404", func(t *testing.T) {
		rec := serve(t, newTestRouter(&bookingServiceStub{grid: testGrid()}), httptest.NewRequest(http.MethodGet, "/grid?day=MINGGU", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestBookingHandlerLiveStatus(t *testing.T) {
	status := scheduler.LiveStatus{
		Day: "SENIN", Time: scheduler.NewClockTime(9, 5), Total: 3, Occupied: 1, Available: 2,
		OccupiedRooms: []string{"B4A"},
	}

	t.Run("current moment", func(t *testing.T) {
		stub := &bookingServiceStub{live: status}
		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodGet, "/status/live", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.liveAtUsed {
			t.Fatalf("expected the current moment to be used")
		}
		resp := decodeBody[liveStatusResponse](t, rec)
		if resp.Time != "09:05" || resp.Occupied != 1 || resp.OccupiedRooms[0] != "B4A" {
			t.Fatalf("unexpected response %+v", resp)
		}
		if !strings.Contains(rec.Body.String(), `"maintenance_rooms":[]`) {
			t.Fatalf("expected empty maintenance rooms array, got %s", rec.Body.String())
		}
	})

	t.Run("explicit moment", func(t *testing.T) {
		stub := &bookingServiceStub{live: status}
		rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodGet, "/status/live?day=selasa&time=13.30", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !stub.liveAtUsed || stub.liveAtDay != "selasa" || stub.liveAtTime != scheduler.NewClockTime(13, 30) {
			t.Fatalf("unexpected override day=%q time=%s", stub.liveAtDay, stub.liveAtTime)
		}
	})

	for _, query := range []string{"?day=SENIN", "?time=09:00", "?day=SENIN&time=9am"} {
		t.Run("rejects "+query, func(t *testing.T) {
			stub := &bookingServiceStub{live: status}
			rec := serve(t, newTestRouter(stub), httptest.NewRequest(http.MethodGet, "/status/live"+query, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if stub.liveAtUsed {
				t.Fatalf("service must not be called")
			}
		})
	}
}

func TestNilHandlerReturns500(t *testing.T) {
	var h *BookingHandler
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
