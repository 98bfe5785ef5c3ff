package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:     "briefcast",
		Short:   "Briefcast - listen to generated news briefings",
		Version: Version,
	}

	rootCmd.AddCommand(playerCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(transcriptsCmd())
	rootCmd.AddCommand(feedCmd())
	rootCmd.AddCommand(eventsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
