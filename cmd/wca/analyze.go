package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/render"
)

func analyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <text>",
		Short: "Classify a single message: sentiment and flirt markers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			lex := a.sentimenter()
			return render.WriteAnalysis(os.Stdout, render.Analysis{
				Text:      text,
				Score:     lex.Score(text),
				Sentiment: lex.Classify(text),
				Flirt:     a.flirter().Classify(text),
			}, stdoutIsTerminal())
		},
	}
}
