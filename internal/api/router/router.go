package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ymatsuda/hospital-census/internal/census"
	"github.com/ymatsuda/hospital-census/internal/http/handlers"
	httpmiddleware "github.com/ymatsuda/hospital-census/internal/http/middleware"
	"github.com/ymatsuda/hospital-census/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	CensusHandler      *census.Handler
	MetaHandler        *handlers.MetaHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/inpatients", func(r chi.Router) {
			r.Get("/daily-by-year", cfg.CensusHandler.InpatientsDailyByYear)
			r.Get("/daily-by-dept", cfg.CensusHandler.InpatientsDailyByDept)
			r.Get("/monthly-by-year", cfg.CensusHandler.InpatientsMonthlyByYear)
			r.Get("/monthly-by-dept", cfg.CensusHandler.InpatientsMonthlyByDept)
		})

		api.Route("/outpatients", func(r chi.Router) {
			r.Get("/daily-by-year", cfg.CensusHandler.OutpatientsDailyByYear)
			r.Get("/daily-by-visit-type", cfg.CensusHandler.OutpatientsDailyByVisitType)
			r.Get("/daily-by-dept", cfg.CensusHandler.OutpatientsDailyByDept)
			r.Get("/monthly-by-year", cfg.CensusHandler.OutpatientsMonthlyByYear)
			r.Get("/monthly-by-visit-type", cfg.CensusHandler.OutpatientsMonthlyByVisitType)
			r.Get("/monthly-by-dept", cfg.CensusHandler.OutpatientsMonthlyByDept)
		})

		if cfg.MetaHandler != nil {
			api.Get("/departments", cfg.MetaHandler.ListDepartments)
			api.Get("/date-range", cfg.MetaHandler.GetDateRange)
		}
	})

	return r
}
