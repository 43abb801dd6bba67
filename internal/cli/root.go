// Package cli defines Cobra command definitions for the insight CLI.
// This file contains the root command, which runs the report itself.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asleep-ai/skills/internal/config"
	"github.com/asleep-ai/skills/internal/insight"
	"github.com/asleep-ai/skills/internal/ui"
)

var (
	daysFlag    int
	checkNew    bool
	force       bool
	showHistory bool
	verbose     bool
	version     = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "Sleep insights for SleepHub users",
	Long: `Insight fetches your recent sleep sessions from SleepHub, computes
daily series, monthly averages and trends per metric, and prints a
machine-readable report. With --check-new it prints only when an
unreported session exists, which makes it safe to run on a heartbeat.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runInsight,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runInsight(cmd *cobra.Command, args []string) error {
	ui.SetVerbose(verbose)

	stateDir, err := config.StateDir()
	if err != nil {
		return err
	}
	cfg, err := config.ReadConfig(stateDir)
	if err != nil {
		return err
	}

	app, err := insight.New(cfg, stateDir)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	if showHistory {
		return app.PrintHistory()
	}

	return app.Run(cmd.Context(), insight.Options{
		Days:     daysFlag,
		CheckNew: checkNew,
		Force:    force,
	})
}

func init() {
	rootCmd.Flags().IntVar(&daysFlag, "days", 7, "Days of sleep data to fetch")
	rootCmd.Flags().BoolVar(&checkNew, "check-new", false, "Only output if an unreported session exists")
	rootCmd.Flags().BoolVar(&force, "force", false, "Emit and record a report even when nothing is new")
	rootCmd.Flags().BoolVar(&showHistory, "history", false, "Show reported sessions and generation history")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print progress to stderr even when not a terminal")

	rootCmd.AddCommand(setupCmd)
}
