package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wikimark.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikimark",
		Short: "Resolve subdomain tokens to knowledge-graph entities",
		Long: `wikimark resolves a subdomain token to the official website of the
matching knowledge-graph entity.

A token containing an entity identifier (q42.wikimark.net) is looked up
directly and answered with an immediate redirect. Any other token
(douglas-adams.wikimark.net) runs a full-text entity search and navigates
to the best match after a short, cancelable delay.

Run 'wikimark serve' to answer such requests over HTTP, or
'wikimark resolve <token>' to resolve tokens from the command line.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
