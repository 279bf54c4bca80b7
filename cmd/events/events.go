package events

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"catalogbench/internal/app"
	"catalogbench/internal/logging"
	"catalogbench/pkg/rabbitmq"
)

// NewEventsCommand creates the events command.
func NewEventsCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print seeding and search events published to RabbitMQ",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(v)
			if err != nil {
				return err
			}
			if cfg.RabbitMQURL == "" {
				return fmt.Errorf("RABBITMQ_URL is not set")
			}

			client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				if err := client.Close(); err != nil {
					logging.Logger().Warn().Err(err).Msg("error closing RabbitMQ client")
				}
			}()

			out := cmd.OutOrStdout()
			logging.Info(ctx).Str("queue", rabbitmq.DefaultQueue).Msg("consuming events")
			return client.ConsumeEvents(func(ev rabbitmq.Event) error {
				_, err := fmt.Fprintf(out, "%s %-16s %s\n", ev.OccurredAt.Format("15:04:05.000"), ev.Type, ev.Payload)
				return err
			})
		},
	}
}
