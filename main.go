package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"catalogbench/cmd/events"
	"catalogbench/cmd/query"
	"catalogbench/cmd/seed"
	"catalogbench/cmd/serve"
	"catalogbench/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(viper.New()).ExecuteContext(ctx); err != nil {
		logging.Logger().Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

// persistentFlags maps root flags to the configuration keys they override.
var persistentFlags = []struct {
	name, key, usage string
}{
	{"port", "APP_PORT", "HTTP listen address"},
	{"env", "APP_ENV", "Environment (development, production)"},
	{"log-level", "LOG_LEVEL", "Log level (debug, info, warn, error)"},
	{"db-driver", "DATABASE_DRIVER", "Catalog database driver (sqlite, postgres)"},
	{"db-dsn", "DATABASE_DSN", "Database DSN; for sqlite it overrides the catalog file path"},
	{"data-dir", "DATA_DIR", "Directory holding the sqlite catalog"},
	{"rabbitmq-url", "RABBITMQ_URL", "RabbitMQ URL; events are disabled when empty"},
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "catalogbench",
		Short: "Local product catalog search benchmark",
		Long: `catalogbench seeds a local product catalog with generated records and
measures substring and exact barcode search latency over it.

Without a subcommand it behaves like "catalogbench serve".`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve.Run(cmd, v)
		},
	}

	for _, f := range persistentFlags {
		rootCmd.PersistentFlags().String(f.name, "", f.usage)
		_ = v.BindPFlag(f.key, rootCmd.PersistentFlags().Lookup(f.name))
	}

	rootCmd.AddCommand(serve.NewServeCommand(v))
	rootCmd.AddCommand(seed.NewSeedCommand(v))
	rootCmd.AddCommand(query.NewSearchCommand(v))
	rootCmd.AddCommand(query.NewScanCommand(v))
	rootCmd.AddCommand(events.NewEventsCommand(v))
	return rootCmd
}
