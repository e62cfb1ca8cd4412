// Package http provides the chi router, handlers and middleware for the room schedule API.
//
// The router exposes the following endpoints:
//   - GET /healthz: liveness probe returning {"status":"ok"}.
//   - GET /catalog: the configured rooms, day names and time slots (with break flag).
//   - GET /bookings, POST /bookings: list stored bookings or admit one. Admission replies
//     201 with the booking and any overlap warnings, 409 when overlaps are rejected.
//   - POST /bookings/import: multipart upload (field `file`) of an .xlsx workbook that
//     replaces the whole collection.
//   - GET /bookings/export: the stored bookings as an .xlsx attachment, 404 when empty.
//   - GET /grid: the projected room × day × slot grid. Optional `room` and `day` query
//     parameters narrow the rows returned. GET /grid/export returns it as .xlsx.
//   - GET /status/live: room usage right now, or at `day` and `time` when both are given.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
