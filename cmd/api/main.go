package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"lecture-insights-go/internal/api"
	"lecture-insights-go/internal/app"
	"lecture-insights-go/internal/config"
	"lecture-insights-go/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.FromEnv()).WithError(err).Fatal("failed to load configuration")
	}
	log := logger.New(logger.Options{Environment: cfg.Logging.Environment, Level: cfg.Logging.Level})
	log.WithField("service", "lecture-insights-go").Info("starting service")

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a := app.New(cfg, log, reg)

	if cfg.Logging.Environment != "" && cfg.Logging.Environment != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Options{
		Intake:         a.Processor,
		Metrics:        a.Metrics,
		Breakers:       a.Breakers,
		Gatherer:       reg,
		Logger:         log,
		MaxUploadBytes: cfg.Intake.MaxUploadBytes(),
	})

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 60 * time.Second,
		// retries across three stages can take minutes
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	created, destroyed := a.Resources.Stats()
	log.WithField("created", created).WithField("destroyed", destroyed).Info("service stopped")
}
