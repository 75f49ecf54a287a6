package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"train-station/internal/audit"
	"train-station/internal/auth"
	bookingapp "train-station/internal/booking/application"
	bookingrepo "train-station/internal/booking/infrastructure/postgres"
	bookinghttp "train-station/internal/booking/interfaces/http"
	catalogrepo "train-station/internal/catalog/infrastructure/postgres"
	cataloghttp "train-station/internal/catalog/interfaces/http"
	"train-station/internal/config"
	"train-station/internal/logging"
	"train-station/internal/observability/metrics"
	schedulingapp "train-station/internal/scheduling/application"
	schedulingrepo "train-station/internal/scheduling/infrastructure/postgres"
	schedulinghttp "train-station/internal/scheduling/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		baseLogger := logging.New(config.Log{})
		baseLogger.Fatal().Err(err).Msg("config load failed")
	}
	logger := logging.New(cfg.Log)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("db ping failed")
	}

	metrics.Init(metrics.DBCountSource{DB: db, Logger: logger})
	auditRepo := audit.NewRepository(db)

	trainTypeRepo := catalogrepo.NewTrainTypeRepository(db)
	trainRepo := catalogrepo.NewTrainRepository(db)
	stationRepo := catalogrepo.NewStationRepository(db)
	routeRepo := catalogrepo.NewRouteRepository(db)
	crewRepo := catalogrepo.NewCrewRepository(db)

	trainTypeHandler, err := cataloghttp.NewTrainTypeHandler(trainTypeRepo, auditRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("train type handler")
	}
	trainHandler, err := cataloghttp.NewTrainHandler(trainRepo, trainTypeRepo, auditRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("train handler")
	}
	stationHandler, err := cataloghttp.NewStationHandler(stationRepo, auditRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("station handler")
	}
	routeHandler, err := cataloghttp.NewRouteHandler(routeRepo, auditRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("route handler")
	}
	crewHandler, err := cataloghttp.NewCrewHandler(crewRepo, auditRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("crew handler")
	}

	journeyRepo := schedulingrepo.NewJourneyRepository(db)
	journeyService, err := schedulingapp.NewService(journeyRepo, schedulingapp.SystemClock{},
		schedulingapp.WithAllowPastDepartures(cfg.Journeys.AllowPastDepartures))
	if err != nil {
		logger.Fatal().Err(err).Msg("journey service")
	}
	journeyHandler, err := schedulinghttp.NewJourneyHandler(journeyService, auditRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("journey handler")
	}

	orderRepo := bookingrepo.NewOrderRepository(db)
	orderService, err := bookingapp.NewService(orderRepo, bookingapp.SystemClock{}, cfg.Booking.MaxTicketsPerOrder)
	if err != nil {
		logger.Fatal().Err(err).Msg("order service")
	}
	orderHandler, err := bookinghttp.NewOrderHandler(orderService, auditRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("order handler")
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/train-types", trainTypeHandler)
	mux.Handle("/api/v1/train-types/", trainTypeHandler)
	mux.Handle("/api/v1/trains", trainHandler)
	mux.Handle("/api/v1/trains/", trainHandler)
	mux.Handle("/api/v1/stations", stationHandler)
	mux.Handle("/api/v1/stations/", stationHandler)
	mux.Handle("/api/v1/routes", routeHandler)
	mux.Handle("/api/v1/routes/", routeHandler)
	mux.Handle("/api/v1/crews", crewHandler)
	mux.Handle("/api/v1/crews/", crewHandler)
	mux.Handle("/api/v1/journeys", journeyHandler)
	mux.Handle("/api/v1/journeys/", journeyHandler)
	mux.Handle("/api/v1/orders", orderHandler)
	mux.Handle("/api/v1/orders/", orderHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: accessLog(authMiddleware.Wrap(mux), logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown incomplete")
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func accessLog(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		duration := time.Since(start)
		metrics.ObserveHTTP(r.Method, sw.status, duration)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", duration).
			Str("ip", audit.ClientIP(r)).
			Msg("request")
	})
}
