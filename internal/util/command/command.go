package command

import (
	"context"

	"github.com/spf13/cobra"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/config"
	"github/smartkit/relay/internal/store"
	"github/smartkit/relay/internal/util"
)

// NewSubcommandGroup returns a command that only exists to group its
// subcommands; calling it directly prints usage.
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use: use,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(subcommands...)
	return cmd
}

// WithServer runs fn against a minimally initialized server: logger, database
// connection, and store. The HTTP stack and chain backends stay down.
func WithServer(ctx context.Context, cfg config.Server, fn func(ctx context.Context, s *api.Server) error) error {
	util.InitLogger(cfg.Logger.Level, cfg.Logger.PrettyPrintConsole)

	db, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}

	s := api.NewServer(cfg)
	s.DB = db
	s.Store = store.NewPostgres(db)

	defer func() {
		_ = db.Close()
	}()

	return fn(ctx, s)
}
