package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/accelefreight/af-server/internal/domain/shared"
	"github.com/accelefreight/af-server/internal/infrastructure/database"
	"github.com/accelefreight/af-server/internal/migration"
)

// NewMigrateCommand creates the legacy migration command. The catalog
// kinds go first so the shipment rows have their company foreign keys
// in place.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate legacy v1 records into canonical shipments",
		Long: `Reads the legacy_entities interop table, migrates the catalog kinds
(companies, ports, file tags) and then assembles one canonical shipment
per legacy AFCQ- record. Consumed records are marked superseded, so a
second run writes nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, logger, db, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close(db)
			defer logger.Sync()

			m := migration.NewMigrator(store, logger, &shared.RealClock{})
			opts := migration.Options{DryRun: !commit}

			catalog, err := m.MigrateCatalog(cmd.Context(), opts)
			if err != nil {
				return err
			}
			catalog.Write(os.Stdout)

			report, err := m.Run(cmd.Context(), opts)
			report.Write(os.Stdout)
			return err
		},
	}
}

// NewBackfillInvoiceCommand creates the issued_invoice normalizer. Run
// before migrate so the merged flag folds into the canonical records.
func NewBackfillInvoiceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-invoice",
		Short: "Normalize the legacy issued_invoice flag",
		Long: `The v1 dataset stored issued_invoice inconsistently across the order
and quotation kinds. This OR-merges the two and writes the resolved
bool back to both legacy records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, logger, db, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close(db)
			defer logger.Sync()

			m := migration.NewMigrator(store, logger, &shared.RealClock{})
			report, err := m.BackfillInvoices(cmd.Context(), migration.Options{DryRun: !commit})
			report.Write(os.Stdout)
			return err
		},
	}
}
