package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/metrics"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/tui"
)

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Interactive dashboard: per-sender insights and a message analyzer",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, path, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}

			if err := metrics.StartServer(a.cfg.MetricsAddr); err != nil {
				return err
			}

			return tui.Run(tui.Config{
				Holder:      chat.NewHolder(tbl),
				Path:        path,
				Load:        a.loadOptions(),
				Sentimenter: a.sentimenter(),
				Flirter:     a.flirter(),
			})
		},
	}
}
