package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for bookstudy.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookstudy",
		Short: "Turn photographed English book pages into a Japanese study report",
		Long: `bookstudy runs the page analysis pipeline from the command line.

It extracts the text from a batch of page photos, translates it into
Japanese, and explains the grammar patterns and key vocabulary, then
writes the assembled study report to disk.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewAnalyzeCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
