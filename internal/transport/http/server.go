// Package httptransport builds the HTTP server and the middleware chain shared by
// every route.
package httptransport

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ServerConfig contains tunables for the HTTP server.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigin   string
}

// NewServer creates *http.Server with provided handler.
func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// NewRouter returns a router that records metrics for every matched route.
func NewRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestMetrics())
	return router
}

// Wrap installs the outer middleware chain around handler: panic recovery,
// request logging and CORS, outermost first. It sits outside the router so
// unmatched routes and preflight requests pass through it too.
func Wrap(cfg ServerConfig, logger logrus.FieldLogger, handler http.Handler) http.Handler {
	return PanicRecovery(logger)(LogRequest(logger)(Cors(cfg.CORSOrigin)(handler)))
}
