package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"briefcast/api"
	"briefcast/config"
	"briefcast/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func playerCmd() *cobra.Command {
	var logFile string
	var withAPI bool

	cmd := &cobra.Command{
		Use:   "player",
		Short: "Open the terminal player",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := tea.LogToFile(logFile, "briefcast")
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if withAPI {
				srv := api.NewServer(api.Options{Session: a.session, History: a.history, Metrics: a.metrics.Handler()})
				srv.Start(cfg.API.Addr)
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(ctx)
				}()
			}

			program := tea.NewProgram(tui.NewModel(a.session), tea.WithAltScreen())

			// Handle graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				program.Quit()
			}()

			if _, err := program.Run(); err != nil {
				return fmt.Errorf("error running player: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log", "briefcast.log", "log file (the screen belongs to the player)")
	cmd.Flags().BoolVar(&withAPI, "api", false, "also serve the control API")
	return cmd
}
