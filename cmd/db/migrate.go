package db

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/config"
	"github/smartkit/relay/internal/store"
	"github/smartkit/relay/internal/util/command"
)

func newMigrate() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies all pending database migrations",
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()

			err := command.WithServer(cmd.Context(), cfg, func(_ context.Context, s *api.Server) error {
				return store.Migrate(s.DB)
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to apply migrations")
			}

			log.Info().Msg("Migrations applied")
		},
	}
}
