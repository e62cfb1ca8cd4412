package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type RouterConfig struct {
	Bookings   *BookingHandler
	Catalog    *CatalogHandler
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(RequestLogger(cfg.Logger))
	router.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		if mw != nil {
			router.Use(mw)
		}
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	if cfg.Catalog != nil {
		router.Get("/catalog", cfg.Catalog.Get)
	}

	if cfg.Bookings != nil {
		router.Route("/bookings", func(r chi.Router) {
			r.Get("/", cfg.Bookings.List)
			r.Post("/", cfg.Bookings.Create)
			r.Post("/import", cfg.Bookings.Import)
			r.Get("/export", cfg.Bookings.Export)
		})
		router.Get("/grid", cfg.Bookings.Grid)
		router.Get("/grid/export", cfg.Bookings.ExportGrid)
		router.Get("/status/live", cfg.Bookings.LiveStatus)
	}

	return router
}
