package serve

import (
	"catalogbench/internal/app"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewServeCommand creates the serve command. It is also the root command's
// default action.
func NewServeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Seed the catalog in the background and serve the search API",
		Long: `Open the catalog, start seeding it in the background and serve the HTTP API.

Query endpoints answer 503 until seeding has completed. Progress is exposed at
/api/v1/seed and as Prometheus metrics at /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd, v)
		},
	}
}

// Run executes the serve command.
func Run(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := app.LoadConfig(v)
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(cmd.Context())
}
