package webhook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/mail-relay/internal/core"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxBodyBytes is the inbound request body ceiling
	DefaultMaxBodyBytes int64 = 2 << 20

	responderProcessed = "Message Processed"
	forwardSent        = "Sent"
)

// Relay is the business surface the webhook server drives
type Relay interface {
	AutoReply(ctx context.Context, template string, email *core.ReceivedEmail) (core.Outcome, error)
	Forward(ctx context.Context, channel string, email *core.ReceivedEmail) error
}

// Options configures the webhook server
type Options struct {
	ListenAddress   string
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server receives provider webhooks over HTTP
type Server struct {
	relay  Relay
	logger *zap.Logger
	opts   Options
}

// NewServer creates a new webhook server
func NewServer(relay Relay, logger *zap.Logger, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		relay:  relay,
		logger: logger,
		opts:   opts,
	}
}

// Handler returns the instrumented route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /emails/responder/{template}", s.handleResponder)
	mux.HandleFunc("POST /emails/forward/slack/{channel_id}", s.handleForward)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, "ok")
	})
	return otelhttp.NewHandler(mux, "mail-relay")
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.ListenAddress, err)
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Webhook server starting", zap.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleResponder(w http.ResponseWriter, r *http.Request) {
	template := r.PathValue("template")
	logger := s.requestLogger(w, r).With(zap.String("template", template))

	email, err := s.decode(w, r)
	if err != nil {
		s.fail(w, logger, err)
		return
	}
	logger = logger.With(zap.String("from", email.From))

	outcome, err := s.relay.AutoReply(r.Context(), template, email)
	if err != nil {
		s.fail(w, logger, err)
		return
	}

	logger.Debug("Responder request processed", zap.String("outcome", string(outcome)))
	writeText(w, responderProcessed)
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	channel := r.PathValue("channel_id")
	logger := s.requestLogger(w, r).With(zap.String("channel", channel))

	email, err := s.decode(w, r)
	if err != nil {
		s.fail(w, logger, err)
		return
	}
	logger = logger.With(zap.String("sender", email.Sender))

	if err := s.relay.Forward(r.Context(), channel, email); err != nil {
		s.fail(w, logger, err)
		return
	}

	logger.Debug("Forward request processed")
	writeText(w, forwardSent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*core.ReceivedEmail, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	return decodeReceivedEmail(r)
}

func (s *Server) requestLogger(w http.ResponseWriter, r *http.Request) *zap.Logger {
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-Id", requestID)
	return s.logger.With(
		zap.String("request_id", requestID),
		zap.String("route", r.Pattern),
	)
}

func (s *Server) fail(w http.ResponseWriter, logger *zap.Logger, err error) {
	envelope := errorEnvelope(err)
	if envelope.Code >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Int("status", envelope.Code), zap.Error(err))
	} else {
		logger.Warn("Request rejected", zap.Int("status", envelope.Code), zap.Error(err))
	}
	writeError(w, envelope)
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
