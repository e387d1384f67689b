package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"gst-reconciliation-engine/backend/internal/config"
	"gst-reconciliation-engine/backend/internal/handlers"
	"gst-reconciliation-engine/backend/internal/ingest"
	"gst-reconciliation-engine/backend/internal/processor"
	"gst-reconciliation-engine/backend/internal/store"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	recordStore := store.New()
	ingestor := ingest.NewIngestor(ingest.DefaultSynonyms(), cfg.IngestWorkers, log)
	engine := processor.NewEngine(cfg.AmountTolerance, cfg.TaxTolerance)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	// Leave room for multipart framing around the configured file limit.
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", (cfg.MaxUploadBytes+1024*1024)/1024)))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	uploadHandler := handlers.NewUploadHandler(recordStore, ingestor, cfg.MaxUploadBytes, log)
	recordsHandler := handlers.NewRecordsHandler(recordStore, log)
	reconcileHandler := handlers.NewReconcileHandler(recordStore, engine, log)
	resultsHandler := handlers.NewResultsHandler(recordStore)
	exportHandler := handlers.NewExportHandler(recordStore, log)

	api := e.Group("/api")
	api.POST("/upload/:recordType", uploadHandler.Upload)
	api.POST("/records/:recordType", recordsHandler.Create)
	api.GET("/records/:recordType", recordsHandler.List)
	api.DELETE("/records/:recordType", recordsHandler.Clear)
	api.POST("/reconcile", reconcileHandler.Reconcile)
	api.GET("/reconciliation/summary", resultsHandler.Summary)
	api.GET("/reconciliation/matches", resultsHandler.Matches)
	api.GET("/reconciliation/export", exportHandler.Export)

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	log.WithField("addr", cfg.ListenAddr).Info("API server started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("shutting down")
}
