package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/room-scheduler/internal/scheduler"
)

type catalogSource interface {
	Rooms() []string
	Days() []string
	Slots() []scheduler.Slot
}

// CatalogHandler exposes the static room and slot configuration.
type CatalogHandler struct {
	catalog   catalogSource
	responder responder
	logger    *slog.Logger
}

func NewCatalogHandler(catalog catalogSource, logger *slog.Logger) *CatalogHandler {
	base := defaultLogger(logger)
	return &CatalogHandler{catalog: catalog, responder: newResponder(base), logger: base}
}

func (h *CatalogHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CatalogHandler", operation, attrs...)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := catalogResponse{
		Rooms: h.catalog.Rooms(),
		Days:  h.catalog.Days(),
		Slots: toSlotDTOs(h.catalog.Slots()),
	}
	h.log(r.Context(), "Get").DebugContext(r.Context(), "catalog served", "rooms", len(resp.Rooms), "slots", len(resp.Slots))
	h.responder.writeJSON(w, r, http.StatusOK, resp)
}

type catalogResponse struct {
	Rooms []string  `json:"rooms"`
	Days  []string  `json:"days"`
	Slots []slotDTO `json:"slots"`
}
