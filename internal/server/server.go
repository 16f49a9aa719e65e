// Package server serves published artifacts over HTTP: a directory index of
// the binary modules and the raw artifact bytes with correct content types.
package server

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/artifact"
)

// New returns a new HTTP server reading from the given store.
// It should be started with http.Server's ListenAndServe.
func New(cfg *Config, log *slog.Logger, store artifact.Store) *http.Server {
	addr := net.JoinHostPort(cfg.host(), strconv.Itoa(cfg.port()))

	subLogger := log.With("component", "server")
	subLogLogger := slog.NewLogLogger(subLogger.Handler(), slog.LevelError)

	h := newHandler(store, subLogger)

	return &http.Server{
		Addr:              addr,
		ErrorLog:          subLogLogger,
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
