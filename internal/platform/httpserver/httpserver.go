// Package httpserver constructs the process HTTP server.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts sized for scoring traffic. Batch
// CSV uploads are the slowest request this server accepts, which bounds the
// read and write timeouts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
