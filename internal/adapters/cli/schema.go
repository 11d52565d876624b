package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accelefreight/af-server/internal/infrastructure/database"
	"github.com/accelefreight/af-server/internal/infrastructure/schema"
)

// NewCreateSchemaCommand creates the schema setup command.
func NewCreateSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-schema",
		Short: "Apply the PostgreSQL schema",
		Long: `Applies the production DDL: tables, partial indexes, the countid
sequence and the trigram indexes used by search. Statements are
idempotent, so reruns are safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !commit {
				fmt.Println("Dry run: would apply the production schema. Pass --commit to apply.")
				return nil
			}

			_, logger, db, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close(db)
			defer logger.Sync()

			if err := schema.Apply(db); err != nil {
				return err
			}
			fmt.Println("Schema applied.")
			return nil
		},
	}
}
