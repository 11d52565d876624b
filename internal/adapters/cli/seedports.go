package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/infrastructure/database"
)

// Terminal names for Port Klang, the only multi-terminal port in the
// catalog today.
var portKlangTerminals = []string{"Westports", "Northport"}

// NewSeedPortsCommand creates the terminal seeding command.
func NewSeedPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-ports",
		Short: "Seed port terminal data",
		Long: `Marks Port Klang (MYPKG) as a multi-terminal port and attaches its
terminal list. Idempotent; reruns leave a correct catalog unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, logger, db, err := openStore()
			if err != nil {
				return err
			}
			defer database.Close(db)
			defer logger.Sync()

			port, err := store.Ports.FindByCode(cmd.Context(), "MYPKG")
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("MYPKG not found in port catalog; run migrate first")
			}
			if err != nil {
				return err
			}

			if port.HasTerminals && equalTerminals(port.Terminals, portKlangTerminals) {
				fmt.Println("MYPKG already has the correct terminals. Nothing to do.")
				return nil
			}

			if !commit {
				fmt.Printf("Dry run: would set MYPKG terminals to %v. Pass --commit to write.\n",
					portKlangTerminals)
				return nil
			}

			port.HasTerminals = true
			port.Terminals = portKlangTerminals
			if err := store.Ports.Upsert(cmd.Context(), port); err != nil {
				return err
			}
			fmt.Printf("MYPKG updated: %d terminals.\n", len(portKlangTerminals))
			return nil
		},
	}
}

func equalTerminals(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
