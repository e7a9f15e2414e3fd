package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/rxtech-lab/argo-backtest/pkg/marketdata"
	"go.uber.org/zap"
)

// DefaultAddress is the address the server listens on when none is given.
const DefaultAddress = ":18080"

// Server exposes the strategy registry and simulations over HTTP.
type Server struct {
	registry strategy.Registry
	source   marketdata.Source
	// dataDir holds one <symbol>.parquet or <symbol>.csv file per symbol
	dataDir    string
	log        *logger.Logger
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a new Server.
func NewServer(registry strategy.Registry, source marketdata.Source, dataDir string, log *logger.Logger) *Server {
	return &Server{
		registry:   registry,
		source:     source,
		dataDir:    dataDir,
		log:        log,
		httpServer: nil,
		listener:   nil,
	}
}

// Router returns the HTTP handler of the server.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/strategies", s.handleStrategies).Methods(http.MethodGet)
	router.HandleFunc("/strategies/{id}", s.handleStrategy).Methods(http.MethodGet)
	router.HandleFunc("/simulate", s.handleSimulate).Methods(http.MethodGet)

	return router
}

// Start listens on address and serves in the background.
// If address is empty, DefaultAddress is used.
func (s *Server) Start(address string) error {
	if address == "" {
		address = DefaultAddress
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("Starting trading server", zap.String("address", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the address the server listens on, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.log.Debug("Handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// handleStrategies handles GET /strategies
func (s *Server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Enumerate())
}

// handleStrategy handles GET /strategies/{id}
func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	info, err := s.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", zap.Error(err))
	}

	http.Error(w, err.Error(), status)
}

// statusFor maps an error code to the HTTP status of the response.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeMissingParameter,
		errors.ErrCodeStrategyConfigError,
		errors.ErrCodeUnsupportedFormat:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupportedStrategy,
		errors.ErrCodeDataNotFound,
		errors.ErrCodeNoDataFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
