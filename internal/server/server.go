// Package server exposes the analysis pipeline over HTTP: contract upload
// and analysis, plus cumulative dashboard metrics.
package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Iron-Ham/council/internal/extract"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/pipeline"
	"github.com/Iron-Ham/council/internal/segment"
	"github.com/Iron-Ham/council/internal/stats"
)

// Server routes HTTP requests into the deliberation pipeline.
type Server struct {
	segmenter *segment.Segmenter
	driver    *pipeline.Driver
	store     *stats.Store
	logger    *logging.Logger
	router    *gin.Engine
}

// New creates a Server wiring the segmenter, the pipeline driver, and the
// stats store behind the HTTP routes.
func New(segmenter *segment.Segmenter, driver *pipeline.Driver, store *stats.Store, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Server{
		segmenter: segmenter,
		driver:    driver,
		store:     store,
		logger:    logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), cors())
	router.POST("/analyze", s.handleAnalyze)
	router.GET("/dashboard-stats", s.handleDashboardStats)
	s.router = router
	return s
}

// Router exposes the underlying handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.router.Run(addr)
}

// cors allows browser frontends on any origin to call the API.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// analyzeResponse is the reply to a contract upload.
type analyzeResponse struct {
	Filename     string            `json:"filename"`
	ReportID     string            `json:"report_id"`
	Results      []pipeline.Result `json:"results"`
	OverallStats stats.Snapshot    `json:"overall_stats"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing file upload"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable file upload"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable file upload"})
		return
	}

	text, err := extract.Text(content, fileHeader.Filename)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Warn("text extraction failed", "filename", fileHeader.Filename, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Could not extract text from file."})
		return
	}

	reportID := uuid.NewString()
	log := s.logger.WithReport(reportID)
	log.Info("analyzing contract", "filename", fileHeader.Filename, "bytes", len(content))

	units, err := s.segmenter.Segment(c.Request.Context(), text)
	if err != nil {
		log.Error("segmentation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	results := s.driver.Run(c.Request.Context(), units)

	snap, err := s.store.Record(results)
	if err != nil {
		log.Error("recording stats failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{
		Filename:     fileHeader.Filename,
		ReportID:     reportID,
		Results:      results,
		OverallStats: snap,
	})
}

func (s *Server) handleDashboardStats(c *gin.Context) {
	snap, err := s.store.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}
