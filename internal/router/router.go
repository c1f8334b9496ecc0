package router

import (
	"net/http"

	mem "permit-history/internal/adapters/storage/memory"
	"permit-history/internal/domain/history"
	"permit-history/internal/domain/permits"
	"permit-history/internal/middleware"
	"permit-history/internal/platform/logger"
	"permit-history/internal/platform/metrics"
	"permit-history/internal/ports/snapshots"

	_ "permit-history/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Service ya construido (cmd/api). Si es nil se crea uno sobre Store.
	Service *history.Service

	// Store de snapshots; si es nil, in-memory (dev/tests).
	Store      snapshots.Store
	Normalizer *permits.Normalizer

	Logger  logger.Logger
	Metrics *metrics.Metrics

	// IngestAPIKey protege POST /snapshots (vacío = sin protección).
	IngestAPIKey string
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	svc := opts.Service
	if svc == nil {
		store := opts.Store
		if store == nil {
			store = mem.NewSnapshotRepo()
		}
		svc = history.NewService(store, history.Options{
			Normalizer: opts.Normalizer,
			Logger:     log,
			Metrics:    opts.Metrics,
		})
	}

	history.RegisterRoutes(r, svc, opts.IngestAPIKey)

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return r
}
