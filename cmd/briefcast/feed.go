package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"briefcast/feed"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func feedCmd() *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "feed [preset|url]",
		Short: "Print a podcast or news feed as a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			items, err := feed.Fetch(ctx, feed.ResolveURL(args[0]), limit)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				Headers("ID", "TITLE", "PLAYS FROM")
			for _, item := range items {
				from := item.AudioURL
				if from == "" && len(item.Source.URLs) > 0 {
					from = "generate: " + item.Source.URLs[0]
				}
				t.Row(item.ID, item.Title, from)
			}
			fmt.Println(t)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "max", "n", 10, "maximum items")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	return cmd
}
