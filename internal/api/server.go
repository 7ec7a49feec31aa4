package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github/smartkit/relay/internal/config"
	"github/smartkit/relay/internal/metrics"
	"github/smartkit/relay/internal/relay"

	// Import postgres driver for database/sql package
	_ "github.com/lib/pq"
)

// Router groups the echo route groups of the server.
type Router struct {
	Routes            []*echo.Route
	Root              *echo.Group
	Management        *echo.Group
	APIV1Wallets      *echo.Group
	APIV1Transactions *echo.Group
	APIV1Project      *echo.Group
}

// Server is the central struct keeping all the dependencies. Components are
// constructed explicitly in cmd/server before Start.
type Server struct {
	// initialized by router.Init(s)
	Echo   *echo.Echo
	Router *Router

	Config  config.Server
	DB      *sqlx.DB
	Store   relay.Store
	Relay   relay.Service
	Poller  *relay.Poller
	Metrics *metrics.Service

	backends map[int64]*relay.ChainBackend
}

// NewServer creates a server shell carrying only its config. The remaining
// components are attached by the caller.
func NewServer(cfg config.Server) *Server {
	return &Server{
		Config: cfg,
	}
}

// AttachBackends hands the per-chain backends to the server for lifecycle
// management. The relay service holds its own reference for dispatch.
func (s *Server) AttachBackends(backends map[int64]*relay.ChainBackend) {
	s.backends = backends
}

// Ready reports whether all components required to serve requests are set.
func (s *Server) Ready() bool {
	return s.Echo != nil &&
		s.Router != nil &&
		s.DB != nil &&
		s.Store != nil &&
		s.Relay != nil &&
		s.Metrics != nil
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return errors.Wrap(err, "failed to start echo server")
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	for chainID, backend := range s.backends {
		log.Debug().Int64("chain_id", chainID).Msg("Closing chain backend")
		backend.Close()
	}

	if s.DB != nil {
		log.Debug().Msg("Closing database connection")

		if err := s.DB.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			log.Error().Err(err).Msg("Failed to close database connection")
			errs = append(errs, err)
		}
	}

	return errs
}
