package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/render"
)

// targetPath resolves --path, falling back to the configured transcript.
func (a *app) targetPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	return a.transcriptPath()
}

func parseLine(arg string) (int, error) {
	line, err := strconv.Atoi(arg)
	if err != nil || line < 1 {
		return 0, fmt.Errorf("invalid line %q: want a positive number", arg)
	}
	return line, nil
}

func previewCmd(a *app) *cobra.Command {
	var context, width int
	var query, path string

	cmd := &cobra.Command{
		Use:   "preview <line>",
		Short: "Preview an indexed conversation with context around a transcript line",
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

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			out, _, err := render.RenderConversation(db, target, render.Options{
				Line:    line,
				Context: context,
				Width:   width,
				Query:   query,
				Color:   true,
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap message text at this width (0 = no wrap)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().StringVar(&path, "path", "", "Indexed transcript (default: configured transcript)")

	return cmd
}
