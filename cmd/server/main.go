package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/mentionforge/brand-analyzer/internal/config"
	"github.com/mentionforge/brand-analyzer/internal/notifications"
	"github.com/mentionforge/brand-analyzer/internal/scheduler"
	"github.com/mentionforge/brand-analyzer/internal/service"
	"github.com/mentionforge/brand-analyzer/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Brand Analyzer")

	ctx := context.Background()

	orchestrator, err := service.BuildOrchestrator(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize analysis pipeline: %v", err)
	}

	// Report archive is optional
	var archive storage.StorageInterface
	if cfg.StorageAccount != "" {
		azureStorage, err := storage.NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize storage: %v", err)
		}
		archive = azureStorage
	} else {
		logrus.Info("AZURE_STORAGE_ACCOUNT not set, reports will not be archived")
	}

	var notifier notifications.NotificationInterface
	if notificationService := notifications.NewService(cfg); notificationService.Enabled() {
		notifier = notificationService
	}

	analysisService := service.NewService(cfg, orchestrator, archive, notifier)

	schedulerService := scheduler.NewService(cfg, analysisService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      newRouter(analysisService),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.PipelineTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func newRouter(analysisService *service.Service) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/stats", statsHandler(analysisService)).Methods("GET")
	router.HandleFunc("/analyze", analyzeHandler(analysisService)).Methods("POST")
	router.HandleFunc("/reports", listReportsHandler(analysisService)).Methods("GET")
	router.HandleFunc("/reports/{name:.+}", getReportHandler(analysisService)).Methods("GET")

	return router
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func statsHandler(analysisService *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(analysisService.GetStats()))
	}
}

func analyzeHandler(analysisService *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := service.DecodeRequest(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		report, err := analysisService.Run(r.Context(), req)
		if err != nil {
			writeJSON(w, service.StatusCode(err), map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func listReportsHandler(analysisService *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := analysisService.ListReports(r.Context(), r.URL.Query().Get("handle"))
		if err != nil {
			writeJSON(w, service.StatusCode(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"reports": names})
	}
}

func getReportHandler(analysisService *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := analysisService.GetReport(r.Context(), mux.Vars(r)["name"])
		if err != nil {
			status := service.StatusCode(err)
			if !errors.Is(err, service.ErrArchiveDisabled) {
				status = http.StatusNotFound
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to write response: %v", err)
	}
}
