// Package cli implements the af-admin offline tools: schema creation,
// the legacy migration, and one-off data fixers. Every mutating command
// defaults to a dry run and only writes with --commit.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/infrastructure/config"
	"github.com/accelefreight/af-server/internal/infrastructure/database"
	"github.com/accelefreight/af-server/internal/infrastructure/logging"
)

var (
	configPath string
	commit     bool
)

// NewRootCommand creates the root command for the admin CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "af-admin",
		Short: "AcceleFreight offline administration tools",
		Long: `af-admin runs the offline jobs around the shipment platform:
schema creation, the one-shot legacy migration, and data fixers.

All mutating commands are dry runs by default; pass --commit to write.

Examples:
  af-admin create-schema --commit
  af-admin migrate
  af-admin migrate --commit
  af-admin backfill-invoice --commit
  af-admin seed-ports --commit`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search standard locations)")
	rootCmd.PersistentFlags().BoolVar(&commit, "commit", false,
		"Write changes (default: dry run)")

	rootCmd.AddCommand(NewCreateSchemaCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewBackfillInvoiceCommand())
	rootCmd.AddCommand(NewSeedPortsCommand())

	return rootCmd
}

// openStore loads configuration and connects the canonical store.
func openStore() (*persistence.Store, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return persistence.NewStore(db), logger, db, nil
}
