package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/logging"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/render"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/search"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func plainSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", "")
	return strings.ReplaceAll(snippet, "<<<", "")
}

func tsvField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func searchCmd(a *app) *cobra.Command {
	var sender, sentiment, since string
	var limit int
	var all, noIndex bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across indexed messages",
		Long: `Search indexed messages using FTS5. Output is TSV for fzf integration:
  path, line, when, sender, snippet

Recommended shell function (add to .zshrc):
  wcaf() {
    wca search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'wca preview {2} --path {1} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(wca open {2} --path {1})'
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			opts := search.Options{
				Query:     args[0],
				Sender:    sender,
				Sentiment: sentiment,
				Since:     since,
				Limit:     limit,
			}

			// Auto-update the configured transcript before searching
			if path, err := a.transcriptPath(); err == nil {
				if !noIndex {
					if _, err := index.IndexAll(cmd.Context(), db, path, a.indexOptions(false)); err != nil {
						logging.L().Warn().Err(err).Str(logging.FieldPath, path).Msg("auto-index failed")
					}
				}
				if !all {
					opts.Path = path
				}
			}

			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			color := stdoutIsTerminal()
			for _, r := range results {
				snippet := tsvField(r.Snippet)
				when := render.When(r.Date, r.Hour)
				name := tsvField(r.Sender)
				if color {
					snippet = colorizeSnippet(snippet)
					when = sColorDim + when + sColorReset
					name = sColorBlue + name + sColorReset
				} else {
					snippet = plainSnippet(snippet)
				}
				// first two fields (path, line) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s\t%s\t%s\n", r.Path, r.LineNumber, when, name, snippet)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "Filter by sender")
	cmd.Flags().StringVar(&sentiment, "sentiment", "", "Filter by sentiment (Positive/Negative/Neutral)")
	cmd.Flags().StringVar(&since, "since", "", "Filter messages sent on or after date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	cmd.Flags().BoolVar(&all, "all", false, "Search every indexed transcript, not just the configured one")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "Skip the index refresh before searching")

	return cmd
}
