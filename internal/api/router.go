package api

import (
	"log/slog"
	"net/http"
	"time"

	"loan-underwriter/internal/api/handler"
	mw "loan-underwriter/internal/api/middleware"
	"loan-underwriter/internal/config"
	"loan-underwriter/internal/domain/loan"

	_ "loan-underwriter/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// SetupRouter wires every route. A nil limiter disables rate limiting.
func SetupRouter(loanService loan.LoanService, db handler.Pinger, limiter mw.RateLimiter, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, limiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, logger)
	setupLoanRoutes(router, loanService, cfg, logger)
	router.Get("/health", handler.NewHealthHandler(db, logger).Health)
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, limiter mw.RateLimiter, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	if limiter != nil {
		router.Use(limiter.Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupLoanRoutes(router *chi.Mux, loanService loan.LoanService, cfg *config.Config, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(loanService, cfg.Underwriting.MaxTermMonths, logger)
	auth := mw.AuthMiddleware(cfg.Server.Auth, logger)

	router.Route("/loans", func(r chi.Router) {
		r.Use(auth)
		r.Post("/applications", loanHandler.SubmitApplication)
		r.Route("/{requestID}", func(r chi.Router) {
			r.Get("/", loanHandler.GetLoan)
			r.Get("/schedule", loanHandler.GetSchedule)
			r.Get("/schedule/export", loanHandler.ExportSchedule)
			r.Post("/schedule/retry", loanHandler.RetrySchedule)
			r.Get("/outstanding", loanHandler.GetOutstanding)
		})
	})

	router.With(auth).Post("/installments/{installmentID}/pay", loanHandler.PayInstallment)
	router.With(auth).Get("/applicants/loans", loanHandler.GetApplicantLoans)
}
