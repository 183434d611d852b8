// Package server exposes the generator, scanner and pairing view over
// HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ericlevine/qrstudio"
	"github.com/ericlevine/qrstudio/export"
	"github.com/ericlevine/qrstudio/internal/config"
	"github.com/ericlevine/qrstudio/qrcode"
)

// Server holds the shared encoder, scanner and pairing sessions.
type Server struct {
	enc     qrcode.Encoder
	scanner *qrcode.Scanner
	export  *export.Pipeline

	mu    sync.Mutex
	cfg   *config.Config
	pairs map[string]*pair
	now   func() time.Time
}

// New returns a Server using cfg for request defaults.
func New(cfg *config.Config) *Server {
	enc := qrcode.NewEncoder()
	return &Server{
		enc:     enc,
		scanner: qrcode.NewScanner(),
		export:  export.New(enc),
		cfg:     cfg,
		pairs:   make(map[string]*pair),
		now:     time.Now,
	}
}

// SetConfig replaces the defaults, for configuration reloads.
func (s *Server) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *Server) config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}).Methods("GET")
	r.HandleFunc("/encode", s.handleEncode).Methods("GET")
	r.HandleFunc("/qr.png", s.handleExport(export.FormatPNG)).Methods("GET")
	r.HandleFunc("/qr.svg", s.handleExport(export.FormatSVG)).Methods("GET")
	r.HandleFunc("/masks", s.handleMasks).Methods("GET")
	r.HandleFunc("/masks/{index:[0-9]+}.svg", s.handleMaskSVG).Methods("GET")
	r.HandleFunc("/scan", s.handleScan).Methods("POST")
	r.HandleFunc("/pair", s.handlePairCreate).Methods("POST")
	r.HandleFunc("/pair/{id}", s.handlePairGet).Methods("GET")
	r.HandleFunc("/pair/{id}/pointer", s.handlePairPointer).Methods("POST")
	r.HandleFunc("/pair/{id}/qr.png", s.handlePairQR).Methods("GET")
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		qrstudio.Logger().Warn("server: write response", "err", err)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Failure string `json:"failure,omitempty"`
}

// encodeStatus maps encoder and export errors to HTTP statuses.
func encodeStatus(err error) int {
	switch {
	case errors.Is(err, qrstudio.ErrEmpty), errors.Is(err, qrstudio.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, qrstudio.ErrTooBig):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeEncodeError(w http.ResponseWriter, err error) {
	f := qrstudio.Classify(err)
	if errors.Is(err, qrstudio.ErrInvalidOptions) {
		f = qrstudio.FailureNone
	}
	writeJSON(w, encodeStatus(err), errorResponse{Error: err.Error(), Failure: f.String()})
}
