package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"briefcast/api"
	"briefcast/config"
	"briefcast/scheduler"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var addr string
	var noSchedule bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run headless with the control API and the daily schedule",
		Long: `Run the player without a screen.

Examples:
  briefcast serve
  briefcast serve --addr :9000 --no-schedule`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addr != "" {
				cfg.API.Addr = addr
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			if err := a.session.Refresh(ctx); err != nil {
				log.Printf("⚠️  Initial library refresh failed: %v", err)
			}
			cancel()

			srv := api.NewServer(api.Options{Session: a.session, History: a.history, Metrics: a.metrics.Handler()})
			srv.Start(cfg.API.Addr)

			var sched *scheduler.Scheduler
			if !noSchedule && cfg.Schedule.Cron != "" {
				sched = scheduler.New(a.session)
				if err := sched.Start(cfg.Schedule.Cron); err != nil {
					return err
				}
				log.Printf("Next briefing at %s", sched.Next().Format(time.RFC1123))
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			if sched != nil {
				sched.Stop()
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "control API address (overrides api.addr)")
	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "do not pre-generate today's briefing")
	return cmd
}
