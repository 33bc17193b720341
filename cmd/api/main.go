package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/orderexport/amazon-order-exporter/internal/adapters/amazon"
	"github.com/orderexport/amazon-order-exporter/internal/adapters/fetch"
	"github.com/orderexport/amazon-order-exporter/internal/application/exporter"
	"github.com/orderexport/amazon-order-exporter/internal/domain/export"
	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
	"github.com/orderexport/amazon-order-exporter/internal/infrastructure/config"
	"github.com/orderexport/amazon-order-exporter/internal/infrastructure/logging"
	"github.com/orderexport/amazon-order-exporter/internal/infrastructure/statestore"
)

type APIServer struct {
	cfg    *config.Config
	store  *statestore.SQLiteStore
	client *fetch.Client
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	progress exporter.Progress
	lastFile string
	lastErr  string
}

func NewAPIServer(cfg *config.Config, store *statestore.SQLiteStore, client *fetch.Client, logger *slog.Logger) *APIServer {
	return &APIServer{cfg: cfg, store: store, client: client, logger: logger}
}

// ExportRequest starts a new export run.
type ExportRequest struct {
	URL       string `json:"url" binding:"required"`
	Format    string `json:"format"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	ExportAll bool   `json:"exportAll"`
}

func (s *APIServer) startExport(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "an export is already running"})
		return
	}
	s.running = true
	s.lastErr = ""
	s.lastFile = ""
	s.mu.Unlock()

	svc, err := s.newService(req.URL)
	if err != nil {
		s.finishRun("", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := context.Background()
	pageHTML, err := s.client.GetHTML(ctx, req.URL)
	if err != nil {
		s.finishRun("", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	opts := model.ExportOptions{
		Format:    req.Format,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		ExportAll: req.ExportAll,
	}
	if err := svc.Start(ctx, opts, req.URL, pageHTML); err != nil {
		s.finishRun("", err)
		if errors.Is(err, exporter.ErrNoYears) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no order history years match the date range"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	go func() {
		err := svc.Run(ctx)
		s.mu.Lock()
		file := s.lastFile
		s.mu.Unlock()
		s.finishRun(file, err)
		if err != nil {
			s.logger.Error("Export run failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (s *APIServer) newService(baseURL string) (*exporter.Service, error) {
	extractor, err := amazon.NewExtractor(baseURL, s.logger)
	if err != nil {
		return nil, err
	}

	sink := func(file export.File) error {
		if err := os.MkdirAll(s.cfg.Exporter.OutputDir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(s.cfg.Exporter.OutputDir, file.FileName)
		if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
			return err
		}
		s.mu.Lock()
		s.lastFile = path
		s.mu.Unlock()
		return nil
	}

	progress := func(p exporter.Progress) {
		s.mu.Lock()
		s.progress = p
		s.mu.Unlock()
	}

	return exporter.NewService(s.store, s.client, extractor, sink, progress, s.logger, exporter.Config{
		StateKey:     s.cfg.Exporter.StateKey,
		RequestDelay: time.Duration(s.cfg.Exporter.RequestDelayMs) * time.Millisecond,
	}), nil
}

func (s *APIServer) finishRun(file string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.lastFile = file
	if err != nil {
		s.lastErr = err.Error()
	}
}

func (s *APIServer) getStatus(c *gin.Context) {
	state, err := s.store.Load(s.cfg.Exporter.StateKey)
	if errors.Is(err, statestore.ErrNotFound) {
		s.mu.Lock()
		defer s.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{
			"inProgress": s.running,
			"lastFile":   s.lastFile,
			"lastError":  s.lastErr,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inProgress":      state.InProgress,
		"runId":           state.RunID,
		"format":          state.Format,
		"years":           state.YearsToProcess,
		"currentYear":     state.CurrentYearIndex,
		"startIndex":      state.CurrentStartIndex,
		"collectedOrders": len(state.CollectedOrders),
	})
}

func (s *APIServer) getProgress(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.progress)
}

func main() {
	cfg := config.LoadOrEnv()
	logger := logging.NewLoggerWithScope(cfg.Observability.Logging, "api")

	store, err := statestore.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to open state store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := fetch.NewClient(cfg.Exporter.UserAgent, logger)
	server := NewAPIServer(cfg, store, client, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health"},
	}))

	// CORS configuration
	origins := cfg.API.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	{
		api.POST("/export", server.startExport)
		api.GET("/export/status", server.getStatus)
		api.GET("/export/progress", server.getProgress)
	}

	port := strconv.Itoa(cfg.API.Port)
	logger.Info("Starting API server", "port", port)
	if err := router.Run(":" + port); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
