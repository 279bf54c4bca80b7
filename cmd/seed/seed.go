package seed

import (
	"fmt"

	"catalogbench/internal/app"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty catalog with generated products",
		Long: `Fill the catalog with SEED_TOTAL generated products in batches of
SEED_BATCH_SIZE. A catalog that already holds records is left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(v)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Seed(cmd.Context()); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}

			n, err := a.Repo.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog %s holds %d products\n", cfg.CatalogPath(), n)
			return nil
		},
	}
}
