package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/sollytics/provenance/internal/analyzer"
	"github.com/sollytics/provenance/internal/solana"
)

// ---------------------------------------------------------------------------
// HTTP edge — thin routing and encoding around the analyzer
// ---------------------------------------------------------------------------

// Config configures the HTTP server.
type Config struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// DefaultConfig returns development defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		AllowedOrigins: []string{"*"},
	}
}

// Server serves the scoring and graph endpoints.
type Server struct {
	config   Config
	analyzer *analyzer.Analyzer
	client   solana.ChainClient
}

// NewServer builds the HTTP server around the analyzer.
func NewServer(config Config, an *analyzer.Analyzer, client solana.ChainClient) *Server {
	return &Server{config: config, analyzer: an, client: client}
}

// Handler builds the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/score", s.handleScore).Methods(http.MethodPost)
	v1.HandleFunc("/graph/wallet/{address}", s.handleWalletGraph).Methods(http.MethodGet)
	v1.HandleFunc("/graph/token/{mint}", s.handleTokenGraph).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(requestID(r))
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.config.Addr).Msg("api: listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestID attaches a request id to every response and access log line.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		log.Debug().Str("request_id", id).Str("method", r.Method).
			Str("path", r.URL.Path).Msg("api: request")
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("api: response encoding failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
