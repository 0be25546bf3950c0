package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/relayguard/banhammer/module"
)

const (
	metricsEndpoint = "/metrics"
	shutdownTimeout = 5 * time.Second
)

// Server serves the metrics gathered by a prometheus gatherer on /metrics.
type Server struct {
	server *http.Server
	log    zerolog.Logger
}

var _ module.ReadyDoneAware = (*Server)(nil)

// NewServer creates a server listening on port that exposes the metrics of gatherer.
func NewServer(log zerolog.Logger, port uint, gatherer prometheus.Gatherer) *Server {
	addr := ":" + strconv.FormatUint(uint64(port), 10)

	mux := http.NewServeMux()
	mux.Handle(metricsEndpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	}))

	return &Server{
		server: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		log:    log.With().Str("component", "metrics_server").Str("address", addr).Logger(),
	}
}

// Handler returns the http handler of the server.
func (m *Server) Handler() http.Handler {
	return m.server.Handler
}

// Ready starts serving in the background and returns a closed channel.
// A failure to listen is logged, the node keeps running without metrics.
func (m *Server) Ready() <-chan struct{} {
	ready := make(chan struct{})
	go func() {
		m.log.Info().Msg("metrics server started")
		err := m.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			m.log.Debug().Msg("metrics server shut down")
			return
		}
		m.log.Error().Err(err).Msg("metrics server failed")
	}()
	close(ready)
	return ready
}

// Done shuts the server down and returns a channel closed once shutdown completed.
func (m *Server) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := m.server.Shutdown(ctx); err != nil {
			m.log.Warn().Err(err).Msg("metrics server did not shut down cleanly")
		}
	}()
	return done
}
