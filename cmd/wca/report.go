package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/render"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/stats"
)

func reportCmd(a *app) *cobra.Command {
	var user, format string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print message counts, rankings, activity peaks and sentiment per sender",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, path, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			if user != "" {
				if _, ok := tbl.FirstIndex(user); !ok {
					return fmt.Errorf("no messages from %q", user)
				}
			}

			r := stats.BuildReport(tbl, stats.ReportOptions{
				Transcript:  path,
				User:        user,
				Sentimenter: a.sentimenter(),
				Flirter:     a.flirter(),
			})

			if format == "text" {
				return render.Report(os.Stdout, r, !noColor && stdoutIsTerminal())
			}
			return r.Write(os.Stdout, format)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Only show per-sender figures for this sender")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colours")

	return cmd
}
