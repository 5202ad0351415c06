// Package server exposes the detector over HTTP with fasthttp.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	fakenews "github.com/baditaflorin/go_fakenews"
	"github.com/baditaflorin/go_fakenews/internal/batch"
	"github.com/baditaflorin/go_fakenews/internal/config"
	"github.com/baditaflorin/go_fakenews/internal/ports"
	"github.com/baditaflorin/go_fakenews/internal/render"
	"github.com/baditaflorin/go_fakenews/internal/samples"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// Default configuration
const (
	DefaultAddr             = ":8080"
	DefaultReadTimeout      = 30 * time.Second
	DefaultWriteTimeout     = 30 * time.Second
	DefaultMaxRequestSize   = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency      = 0                // 0 means fasthttp's default
	DefaultRequestTimeout   = 30 * time.Second
	DefaultMaxBatchArticles = 1000
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Detector is the part of the detector the handlers use.
type Detector interface {
	Evaluate(ctx context.Context, text string) fakenews.Outcome
	ClassifyBatch(ctx context.Context, articles []ports.Article) ([]batch.Item, error)
	LoadErr() error
	Fingerprint() string
}

// Config configures the HTTP server.
type Config struct {
	Addr             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MaxRequestSize   int
	Concurrency      int
	RequestTimeout   time.Duration
	MaxBatchArticles int
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:             DefaultAddr,
		ReadTimeout:      DefaultReadTimeout,
		WriteTimeout:     DefaultWriteTimeout,
		MaxRequestSize:   DefaultMaxRequestSize,
		Concurrency:      DefaultConcurrency,
		RequestTimeout:   DefaultRequestTimeout,
		MaxBatchArticles: DefaultMaxBatchArticles,
	}
}

// ConfigFromSettings converts the file/env server settings.
func ConfigFromSettings(settings config.ServerConfig) Config {
	cfg := DefaultConfig()
	cfg.Addr = settings.Addr
	cfg.ReadTimeout = settings.ReadTimeout()
	cfg.WriteTimeout = settings.WriteTimeout()
	cfg.MaxRequestSize = settings.MaxRequestSize
	cfg.Concurrency = settings.Concurrency
	return cfg
}

// ClassifyRequest is the body of POST /classify.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// BatchRequest is the body of POST /classify/batch.
type BatchRequest struct {
	Articles []ports.Article `json:"articles"`
}

// BatchResponse is the body returned by POST /classify/batch.
type BatchResponse struct {
	Items   []render.ItemDTO `json:"items"`
	Summary batch.Summary    `json:"summary"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Server serves the classification API.
type Server struct {
	detector Detector
	logger   ports.Logger
	config   Config
	http     *fasthttp.Server
}

// New creates a server. Zero config fields take their defaults.
func New(detector Detector, logger ports.Logger, config Config) *Server {
	def := DefaultConfig()
	if config.Addr == "" {
		config.Addr = def.Addr
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = def.ReadTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if config.MaxRequestSize <= 0 {
		config.MaxRequestSize = def.MaxRequestSize
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = def.RequestTimeout
	}
	if config.MaxBatchArticles <= 0 {
		config.MaxBatchArticles = def.MaxBatchArticles
	}

	s := &Server{detector: detector, logger: logger, config: config}
	s.http = &fasthttp.Server{
		Handler:               s.Handler,
		Name:                  "FakeNewsServer",
		ReadTimeout:           config.ReadTimeout,
		WriteTimeout:          config.WriteTimeout,
		MaxRequestBodySize:    config.MaxRequestSize,
		Concurrency:           config.Concurrency,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "address", s.config.Addr)
		errCh <- s.http.ListenAndServe(s.config.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	if err := s.http.Shutdown(); err != nil {
		s.logger.Error("Error during server shutdown", "error", err)
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}

// Handler is the main fasthttp request handler
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	requestID := string(ctx.Request.Header.Peek(RequestIDHeader))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx.Response.Header.Set(RequestIDHeader, requestID)
	ctx.Response.Header.SetContentType("application/json")

	switch string(ctx.Path()) {
	case "/health":
		s.handleHealth(ctx)
	case "/ready":
		s.handleReady(ctx)
	case "/classify":
		s.handleClassify(ctx)
	case "/classify/batch":
		s.handleBatch(ctx)
	case "/samples":
		s.handleSamples(ctx)
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "Not found", "")
	}

	s.logger.Info("Request processed",
		"request_id", requestID,
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSON(ctx, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(ctx *fasthttp.RequestCtx) {
	if err := s.detector.LoadErr(); err != nil {
		s.writeError(ctx, fasthttp.StatusServiceUnavailable, err.Error(), fakenews.OutcomeUnavailable.String())
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSON(ctx, map[string]interface{}{
		"status":      "ready",
		"fingerprint": s.detector.Fingerprint(),
	})
}

func (s *Server) handleClassify(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	var req ClassifyRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "Invalid request: "+err.Error(), "")
		return
	}

	c, cancel := context.WithTimeout(context.Background(), s.config.RequestTimeout)
	defer cancel()

	outcome := s.detector.Evaluate(c, req.Text)
	if !outcome.OK() {
		s.writeError(ctx, StatusFor(outcome.Kind), outcome.Message(), outcome.Kind.String())
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSON(ctx, render.NewResultDTO("", outcome.Result))
}

func (s *Server) handleBatch(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	var req BatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "Invalid request: "+err.Error(), "")
		return
	}
	if len(req.Articles) == 0 {
		s.writeError(ctx, fasthttp.StatusBadRequest, "At least one article is required", "")
		return
	}
	if len(req.Articles) > s.config.MaxBatchArticles {
		s.writeError(ctx, fasthttp.StatusRequestEntityTooLarge, "Too many articles in one batch", "")
		return
	}
	if err := s.detector.LoadErr(); err != nil {
		s.writeError(ctx, fasthttp.StatusServiceUnavailable, err.Error(), fakenews.OutcomeUnavailable.String())
		return
	}

	for i := range req.Articles {
		if req.Articles[i].ID == "" {
			req.Articles[i].ID = "item-" + strconv.Itoa(i+1)
		}
	}

	c, cancel := context.WithTimeout(context.Background(), s.config.RequestTimeout)
	defer cancel()

	items, err := s.detector.ClassifyBatch(c, req.Articles)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusGatewayTimeout, "Batch interrupted: "+err.Error(), "")
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSON(ctx, NewBatchResponse(items))
}

// NewBatchResponse converts batch items to their JSON form.
func NewBatchResponse(items []batch.Item) BatchResponse {
	resp := BatchResponse{
		Items:   make([]render.ItemDTO, len(items)),
		Summary: batch.Summarize(items),
	}
	for i, item := range items {
		resp.Items[i] = render.NewItemDTO(item)
	}
	return resp
}

func (s *Server) handleSamples(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSON(ctx, samples.All())
}

// StatusFor maps a failed outcome to its HTTP status.
func StatusFor(kind fakenews.OutcomeKind) int {
	switch kind {
	case fakenews.OutcomeOK:
		return fasthttp.StatusOK
	case fakenews.OutcomeEmptyInput:
		return fasthttp.StatusUnprocessableEntity
	case fakenews.OutcomeUnavailable:
		return fasthttp.StatusServiceUnavailable
	default:
		return fasthttp.StatusInternalServerError
	}
}

// writeJSON writes a JSON response to the context
func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("Error marshaling JSON response", "error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}
	ctx.SetBody(response)
}

// writeError writes a JSON error response with the given status
func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, message, kind string) {
	ctx.SetStatusCode(status)
	s.writeJSON(ctx, ErrorResponse{Error: message, Kind: kind})
}
