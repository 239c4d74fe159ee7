package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/config"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/core/match"
	"github.com/rayhuaruijia/Data-auto-correction-through-LLM/internal/workbook"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// OracleFactory builds a fresh oracle for one request's credential. An oracle that also
// implements io.Closer is closed when the request ends.
type OracleFactory func(ctx context.Context, apiKey string) (match.Matcher, error)

type Server struct {
	Config    *config.Config
	NewOracle OracleFactory
	Logger    zerolog.Logger
	// MaxUploadBytes caps the whole request body of /reconcile.
	MaxUploadBytes int64
}

func NewServer(cfg *config.Config, factory OracleFactory, logger zerolog.Logger) *Server {
	return &Server{
		Config:         cfg,
		NewOracle:      factory,
		Logger:         logger,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.Health)
	r.POST("/reconcile", s.Reconcile)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Reconcile takes multipart files "primary" and "reference" and answers with the report
// workbook, or with JSON when format=json.
func (s *Server) Reconcile(c *gin.Context) {
	apiKey := c.GetHeader("X-Oracle-Key")
	if apiKey == "" {
		apiKey = s.Config.Oracle.APIKey
	}
	if apiKey == "" && !strings.EqualFold(s.Config.Oracle.Provider, "ollama") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing oracle api key"})
		return
	}

	if s.MaxUploadBytes > 0 {
		if c.Request.ContentLength > s.MaxUploadBytes {
			s.tooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxUploadBytes)
	}

	primary, err := openUpload(c, "primary")
	if err != nil {
		s.badUpload(c, err, "primary workbook is required")
		return
	}
	defer primary.Close()

	reference, err := openUpload(c, "reference")
	if err != nil {
		s.badUpload(c, err, "reference workbook is required")
		return
	}
	defer reference.Close()

	ctx := c.Request.Context()
	oracle, err := s.NewOracle(ctx, apiKey)
	if err != nil {
		s.Logger.Error().Err(err).Msg("failed to build oracle")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initialize oracle"})
		return
	}
	if closer, ok := oracle.(io.Closer); ok {
		defer closer.Close()
	}

	rec := core.NewReconciler(s.Config, oracle, s.Logger)

	if c.Query("format") == "json" {
		result, err := rec.ReconcileStreams(ctx, primary, reference)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Header("X-Run-Id", result.RunID)
		c.JSON(http.StatusOK, result)
		return
	}

	var buf bytes.Buffer
	result, err := rec.RunStreams(ctx, primary, reference, &buf)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("X-Run-Id", result.RunID)
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(s.Config.Output.Path)+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d bytes", s.MaxUploadBytes)})
}

func (s *Server) badUpload(c *gin.Context, err error, msg string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.tooLarge(c)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (s *Server) fail(c *gin.Context, err error) {
	var loadErr *workbook.LoadError
	if errors.As(err, &loadErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": loadErr.Error()})
		return
	}
	s.Logger.Error().Err(err).Msg("reconciliation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reconcile"})
}

func openUpload(c *gin.Context, field string) (multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return fh.Open()
}
