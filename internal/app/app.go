package app

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/riskibarqy/fantaqb/internal/config"
	"github.com/riskibarqy/fantaqb/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/fantaqb/internal/infrastructure/docimport"
	"github.com/riskibarqy/fantaqb/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantaqb/internal/observability"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
	"github.com/riskibarqy/fantaqb/internal/platform/resilience"
	"github.com/riskibarqy/fantaqb/internal/usecase"
)

// Runtime is the wired service graph over one Store.
type Runtime struct {
	Store      *Store
	Formations *usecase.FormationService
	Weeks      *usecase.WeekService
	Scoring    *usecase.ScoringService
	Rankings   *usecase.RankingService
	LiveViews  *usecase.LiveViewService

	metricsHandler http.Handler
}

func NewRuntime(cfg config.Config, store *Store, logger *logging.Logger) *Runtime {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		metrics        usecase.EngineMetrics
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = observability.NewMetrics(registry)
		metricsHandler = observability.NewMetricsHandler(registry)
	}

	scoringSvc := usecase.NewScoringService(store.Games, store.WeekStats, store.Users, store.Formations, cfg.AggregateWorkers, logger)
	rankingSvc := usecase.NewRankingService(scoringSvc, store.Quarterbacks, store.Formations, metrics, logger)

	return &Runtime{
		Store:          store,
		Formations:     usecase.NewFormationService(store.Games, store.Quarterbacks, store.Formations, store.Users, metrics, logger),
		Weeks:          usecase.NewWeekService(store.Games, store.WeekStats, store.Quarterbacks, store.Users, metrics, logger),
		Scoring:        scoringSvc,
		Rankings:       rankingSvc,
		LiveViews:      usecase.NewLiveViewService(rankingSvc, store.Feed, metrics, logger),
		metricsHandler: metricsHandler,
	}
}

// Importer writes exported documents through the runtime's store.
func (rt *Runtime) Importer(logger *logging.Logger) *docimport.Importer {
	s := rt.Store
	return docimport.NewImporter(s.Quarterbacks, s.Games, s.Users, s.Formations, s.WeekStats, logger)
}

func NewHTTPServer(cfg config.Config, rt *Runtime, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		anubis.Options{
			BaseURL:        cfg.AnubisBaseURL,
			IntrospectPath: cfg.AnubisIntrospectURL,
			AdminKey:       cfg.AnubisAdminKey,
			Circuit: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AnubisCircuitEnabled,
				FailureThreshold: cfg.AnubisCircuitFailureCount,
				OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
			},
		},
		logger,
	)

	handler := httpapi.NewHandler(rt.Formations, rt.Weeks, rt.Rankings, rt.LiveViews, logger)
	router := httpapi.NewRouter(handler, anubisClient, logger, httpapi.RouterOptions{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsHandler:     rt.metricsHandler,
	})

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}
