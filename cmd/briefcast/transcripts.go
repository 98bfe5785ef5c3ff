package main

import (
	"fmt"

	"briefcast/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func transcriptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcripts",
		Short: "List the built-in transcript table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			store, err := loadTranscripts(cfg)
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				Headers("TITLE", "SEGMENTS", "LENGTH")
			for _, title := range store.Titles() {
				tr, _ := store.GetTranscriptForTrack(title)
				length := 0.0
				if n := len(tr); n > 0 {
					length = tr[n-1].End
				}
				t.Row(title, fmt.Sprint(len(tr)), fmt.Sprintf("%.1fs", length))
			}
			fmt.Println(t)
			return nil
		},
	}
}
