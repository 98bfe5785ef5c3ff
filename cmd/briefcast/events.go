package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"briefcast/config"
	"briefcast/events"

	"github.com/spf13/cobra"
)

func eventsCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print playback events from Kafka as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if len(cfg.Kafka.Brokers) == 0 {
				return errors.New("no kafka brokers configured (set BRIEFCAST_KAFKA_BROKERS)")
			}

			enc := json.NewEncoder(os.Stdout)
			consumer, err := events.NewConsumer(events.ConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: group,
				Handler: func(_ context.Context, e events.Event) error {
					return enc.Encode(e)
				},
			})
			if err != nil {
				return fmt.Errorf("failed to create kafka consumer: %w", err)
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return consumer.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&group, "group", "briefcast-events-cli", "consumer group id")
	return cmd
}
