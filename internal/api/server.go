package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"legaldoc/internal/config"
	"legaldoc/internal/documents"
	"legaldoc/internal/logging"
	"legaldoc/internal/models"
	"legaldoc/internal/pipeline"
	"legaldoc/internal/render"
	"legaldoc/internal/telemetry"
	"legaldoc/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg      config.Config
	pipeline *pipeline.Pipeline
	rdb      *redis.Client
	log      *zap.Logger
	now      func() time.Time
}

// NewServer wires the HTTP surface around p. rdb may be nil, which disables
// rate limiting.
func NewServer(cfg config.Config, p *pipeline.Pipeline, rdb *redis.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{cfg: cfg, pipeline: p, rdb: rdb, log: log, now: time.Now}
}

func (s *Server) Routes() http.Handler {
	if s.cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.Middleware(s.log))
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiGroup := router.Group("/api")
	apiGroup.GET("/health", s.handleHealth)
	apiGroup.GET("/summaries", s.handleSummaries)
	apiGroup.GET("/summaries/:id", s.handleSummary)

	analyze := apiGroup.Group("/analyze")
	if s.rdb != nil && s.cfg.RateLimitPerMinute > 0 {
		analyze.Use(RateLimit(s.rdb, s.cfg.RateLimitPerMinute, s.log))
	}
	analyze.POST("", s.handleAnalyze)
	analyze.POST("/upload", s.handleUpload)

	s.mountFrontend(router)
	return router
}

func (s *Server) mountFrontend(router *gin.Engine) {
	dir := s.cfg.FrontendDir
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		s.log.Info("frontend directory not found, serving api only", zap.String("dir", dir))
		return
	}
	router.Static("/static", dir)
	index := filepath.Join(dir, "index.html")
	router.GET("/", func(c *gin.Context) {
		if !util.FileExists(index) {
			writeErr(c, http.StatusNotFound, errors.New("frontend index not found"))
			return
		}
		c.File(index)
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": telemetry.Timestamp(s.now()),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req struct {
		Text         *string `json:"text"`
		DocumentName string  `json:"document_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, http.StatusUnprocessableEntity, fmt.Errorf("invalid json: %w", err))
		return
	}
	if req.Text == nil {
		writeErr(c, http.StatusUnprocessableEntity, errors.New("text is required"))
		return
	}
	if limit := s.cfg.MaxRequestChars; limit > 0 {
		if n := utf8.RuneCountInString(*req.Text); n > limit {
			reason := fmt.Sprintf("Input too long. Maximum %d characters allowed.", limit)
			s.pipeline.RecordRejection(c.Request.Context(), n, reason)
			writeErr(c, http.StatusUnprocessableEntity, errors.New(reason))
			return
		}
	}
	s.analyze(c, models.AnalysisRequest{Text: *req.Text, DocumentName: req.DocumentName})
}

func (s *Server) handleUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		writeErr(c, http.StatusBadRequest, errors.New("no file provided"))
		return
	}
	if !documents.Supported(fh.Filename) {
		writeErr(c, http.StatusBadRequest, fmt.Errorf("%w: %s", util.ErrUnsupportedUpload, filepath.Ext(fh.Filename)))
		return
	}
	if fh.Size > documents.MaxUploadBytes {
		writeErr(c, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds %d bytes", documents.MaxUploadBytes))
		return
	}
	src, err := fh.Open()
	if err != nil {
		writeErr(c, http.StatusBadRequest, fmt.Errorf("open upload: %w", err))
		return
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, documents.MaxUploadBytes+1))
	if err != nil {
		writeErr(c, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}

	text, err := documents.Extract(fh.Filename, data)
	if err != nil {
		writeErr(c, http.StatusBadRequest, err)
		return
	}
	name := strings.TrimSpace(c.PostForm("document_name"))
	if name == "" {
		name = filepath.Base(fh.Filename)
	}
	s.analyze(c, models.AnalysisRequest{Text: text, DocumentName: name})
}

func (s *Server) analyze(c *gin.Context, req models.AnalysisRequest) {
	resp, err := s.pipeline.Analyze(c.Request.Context(), req)
	if err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			writeErr(c, http.StatusBadRequest, verr)
			return
		}
		writeErr(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSummaries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"summaries": s.pipeline.ListSummaries(c.Request.Context())})
}

func (s *Server) handleSummary(c *gin.Context) {
	rec, err := s.pipeline.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrSummaryNotFound) {
			writeErr(c, http.StatusNotFound, err)
			return
		}
		writeErr(c, http.StatusInternalServerError, err)
		return
	}
	if c.Query("format") != "html" {
		c.JSON(http.StatusOK, rec)
		return
	}
	page, err := render.SummaryPage(rec)
	if err != nil {
		writeErr(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// writeErr responds with {"detail": ...}. 5xx errors are logged by the
// request middleware through c.Error.
func writeErr(c *gin.Context, code int, err error) {
	if code >= 500 {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code, gin.H{"detail": toDetail(code, err)})
}

func toDetail(status int, err error) string {
	if err == nil {
		return http.StatusText(status)
	}
	var verr *pipeline.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Reason
	case status >= 500:
		return "Analysis failed: " + err.Error()
	case errors.Is(err, util.ErrSummaryNotFound):
		return "Summary not found."
	case errors.Is(err, util.ErrNoExtractableText):
		return "No extractable text found in the uploaded document."
	case errors.Is(err, util.ErrUnsupportedUpload):
		return "Unsupported file type. Upload a .pdf or .txt document."
	case strings.HasPrefix(err.Error(), "invalid json"):
		return "Malformed JSON request body."
	}
	return err.Error()
}
