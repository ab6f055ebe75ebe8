// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"devflink/internal/notify"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Forward queued form notifications to the form relay",
	Long:  "relay consumes the notification queue (AMQP_URL, AMQP_QUEUE) and posts every event to RELAY_URL. Events the relay rejects are requeued.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AMQPURL == "" || cfg.RelayURL == "" {
			return errors.New("relay needs both AMQP_URL and RELAY_URL")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queue, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer queue.Close()

		relay := notify.NewRelay(cfg.RelayURL)
		slog.Info("relay started", "queue", cfg.AMQPQueue, "target", cfg.RelayURL)

		err = queue.Consume(ctx, func(ctx context.Context, ev notify.Event) error {
			if err := relay.Publish(ctx, ev); err != nil {
				return err
			}
			slog.Info("event relayed", "id", ev.ID, "type", ev.Type)
			return nil
		})
		if err != nil {
			return err
		}

		slog.Info("relay stopped")
		return nil
	},
}
