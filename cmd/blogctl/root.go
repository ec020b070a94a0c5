package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/geocoder89/blogapi/internal/config"
	"github.com/spf13/cobra"
)

// cfg is loaded once before any subcommand runs.
var cfg config.Config

var RootCmd = &cobra.Command{
	Use:           "blogctl [command] [flags]",
	Short:         "Operate the blog API database: migrations and seed data",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}

func success(format string, a ...interface{}) {
	fmt.Println(color.New(color.FgGreen).Sprintf("✓ "+format, a...))
}
