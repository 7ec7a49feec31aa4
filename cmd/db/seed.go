package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/auth"
	"github/smartkit/relay/internal/config"
	"github/smartkit/relay/internal/util/command"
)

const (
	nameFlag   = "name"
	apiKeyFlag = "api-key"
)

func newSeed() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Creates a project with the given API key",
		Run: func(cmd *cobra.Command, _ []string) {
			name, err := cmd.Flags().GetString(nameFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read name flag")
			}
			apiKey, err := cmd.Flags().GetString(apiKeyFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read api-key flag")
			}
			if apiKey == "" {
				log.Fatal().Msg("--api-key is required")
			}

			cfg := config.DefaultServiceConfigFromEnv()

			err = command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				projectID := uuid.New().String()

				_, err := s.DB.ExecContext(ctx, `
					INSERT INTO projects (id, name, api_key_digest)
					VALUES ($1, $2, $3)
					ON CONFLICT (api_key_digest) DO NOTHING`,
					projectID, name, auth.HashAPIKey(cfg.Relay.APIKeySecret, apiKey))
				if err != nil {
					return errors.Wrap(err, "failed to insert project")
				}

				log.Info().Str("project_id", projectID).Str("name", name).Msg("Project seeded")
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to seed project")
			}
		},
	}

	cmd.Flags().String(nameFlag, "dev", "Project name")
	cmd.Flags().String(apiKeyFlag, "", "Raw project API key, stored only as digest")

	return cmd
}
