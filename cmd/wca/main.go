package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:               "wca",
		Short:             "WhatsApp Chat Analyzer - statistics, search and sentiment for exported chats",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.config/wca/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&a.transcript, "transcript", "t", "", "Exported chat transcript (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error, off")

	rootCmd.AddCommand(reportCmd(a))
	rootCmd.AddCommand(usersCmd(a))
	rootCmd.AddCommand(analyzeCmd(a))
	rootCmd.AddCommand(indexCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(previewCmd(a))
	rootCmd.AddCommand(openCmd(a))
	rootCmd.AddCommand(doctorCmd(a))
	rootCmd.AddCommand(dashboardCmd(a))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
