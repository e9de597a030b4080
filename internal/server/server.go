// Package server exposes detection and explanation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/phobologic/codeexplain/internal/explain"
	"github.com/phobologic/codeexplain/internal/lang"
	"github.com/phobologic/codeexplain/internal/model"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// Error codes carried in error envelopes.
const (
	CodeBadRequest      = "bad_request"
	CodeEmptyInput      = "empty_input"
	CodeInvalidLanguage = "invalid_language"
	CodeInternal        = "internal"
)

const requestIDHeader = "X-Request-ID"

// Config wires a Server.
type Config struct {
	Engine   *explain.Engine
	Catalog  *lang.Catalog
	Gatherer prometheus.Gatherer // nil disables /metrics
	Logger   logrus.FieldLogger
	Version  string
}

// Server is the HTTP API.
type Server struct {
	engine  *explain.Engine
	catalog *lang.Catalog
	log     logrus.FieldLogger
	version string
	router  *gin.Engine
}

// Request is the body of both POST endpoints.
type Request struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
	Comments bool   `json:"comments,omitempty"`
}

// DetectResult is returned by POST /v1/detect.
type DetectResult struct {
	Language model.LanguageTag `json:"language"`
	Method   string            `json:"method"`
}

type okEnvelope struct {
	OK     bool `json:"ok"`
	Result any  `json:"result"`
}

type errorEnvelope struct {
	OK        bool   `json:"ok"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// New builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil || cfg.Catalog == nil {
		return nil, errors.New("server: engine and catalog are required")
	}
	s := &Server{
		engine:  cfg.Engine,
		catalog: cfg.Catalog,
		log:     cfg.Logger,
		version: cfg.Version,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())

	r.GET("/healthz", s.handleHealth)
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	v1 := r.Group("/v1")
	v1.POST("/detect", s.handleDetect)
	v1.POST("/explain", s.handleExplain)

	s.router = r
	return s, nil
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDHeader),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"elapsed":    time.Since(start).String(),
		}).Debug("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
		"model":   s.engine.ModelName(),
	})
}

func (s *Server) handleDetect(c *gin.Context) {
	req, ok := s.bind(c)
	if !ok {
		return
	}
	tag, method := s.engine.Detector().DetectWithMethod(c.Request.Context(), req.Code)
	c.JSON(http.StatusOK, okEnvelope{OK: true, Result: DetectResult{Language: tag, Method: string(method)}})
}

func (s *Server) handleExplain(c *gin.Context) {
	req, ok := s.bind(c)
	if !ok {
		return
	}

	var (
		res model.ExplanationResult
		err error
	)
	if req.Language != "" {
		tag, known := s.resolveLanguage(req.Language)
		if !known {
			s.fail(c, http.StatusBadRequest, CodeInvalidLanguage, fmt.Sprintf("unknown language %q", req.Language))
			return
		}
		res, err = s.engine.ExplainAs(c.Request.Context(), req.Code, tag, req.Comments)
	} else {
		res, err = s.engine.Explain(c.Request.Context(), req.Code, req.Comments)
	}

	switch {
	case errors.Is(err, explain.ErrEmptyInput):
		s.fail(c, http.StatusBadRequest, CodeEmptyInput, err.Error())
	case err != nil:
		s.log.WithError(err).Error("explain failed")
		s.fail(c, http.StatusInternalServerError, CodeInternal, "explanation failed")
	default:
		c.JSON(http.StatusOK, okEnvelope{OK: true, Result: res})
	}
}

// bind decodes the request body and rejects blank code.
func (s *Server) bind(c *gin.Context) (Request, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	if strings.TrimSpace(req.Code) == "" {
		s.fail(c, http.StatusBadRequest, CodeEmptyInput, explain.ErrEmptyInput.Error())
		return req, false
	}
	return req, true
}

func (s *Server) resolveLanguage(name string) (model.LanguageTag, bool) {
	if tag, ok := model.ParseLanguageTag(name); ok {
		return tag, true
	}
	return s.catalog.Alias(name)
}

func (s *Server) fail(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorEnvelope{
		OK:        false,
		ErrorCode: code,
		Message:   msg,
		RequestID: c.GetString(requestIDHeader),
	})
}
