package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/open"
)

func openCmd(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "open <line>",
		Short: "Open the transcript in $EDITOR at the given line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args[0])
			if err != nil {
				return err
			}
			target, err := a.targetPath(path)
			if err != nil {
				return err
			}
			return open.Transcript(target, line)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Transcript file (default: configured transcript)")

	return cmd
}
