package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/api/router"
	"github/smartkit/relay/internal/config"
	"github/smartkit/relay/internal/metrics"
	"github/smartkit/relay/internal/relay"
	"github/smartkit/relay/internal/relay/signer"
	"github/smartkit/relay/internal/store"
	"github/smartkit/relay/internal/util"
)

const shutdownTimeout = 30 * time.Second

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Starts the relay server",
		Run: func(_ *cobra.Command, _ []string) {
			runServer()
		},
	}
}

func runServer() {
	cfg := config.DefaultServiceConfigFromEnv()

	util.InitLogger(cfg.Logger.Level, cfg.Logger.PrettyPrintConsole)

	ctx := context.Background()

	s, err := initServer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
		log.Fatal().Errs("errors", errs).Msg("Failed to gracefully shut down server")
	}
}

func initServer(ctx context.Context, cfg config.Server) (*api.Server, error) {
	s := api.NewServer(cfg)

	db, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	s.DB = db
	s.Store = store.NewPostgres(db)

	if err := store.Migrate(db); err != nil {
		return nil, err
	}

	s.Metrics = metrics.New()

	operatorSigner, err := signer.NewOperatorSigner(cfg.Relay.OperatorPrivateKey)
	if err != nil {
		return nil, err
	}
	log.Info().Str("operator", operatorSigner.Address().Hex()).Msg("Operator signer loaded")

	backends := make(map[int64]*relay.ChainBackend, len(cfg.Chains))
	for _, chain := range cfg.Chains {
		backend, err := relay.NewChainBackend(chain, operatorSigner.Address(), cfg.Relay)
		if err != nil {
			log.Warn().Err(err).Str("chain", chain.Name).Msg("Skipping misconfigured chain")
			continue
		}
		backends[chain.ChainID] = backend
		log.Info().Str("chain", chain.Name).Int64("chain_id", chain.ChainID).Msg("Chain backend ready")
	}
	s.AttachBackends(backends)

	s.Poller = relay.NewPoller(s.Store, s.Metrics,
		cfg.Relay.ReceiptPollInterval, cfg.Relay.ReceiptPollMaxAttempts)

	relayService, err := relay.NewService(s.Store, operatorSigner, backends,
		cfg.Relay.DefaultChainID, s.Poller, s.Metrics)
	if err != nil {
		return nil, err
	}
	s.Relay = relayService

	if _, err := relayService.ResumePending(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to resume pending transactions")
	}

	router.Init(s)

	return s, nil
}
