package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
)

func indexCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index a transcript, or every .txt transcript under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var root string
			var err error
			if len(args) == 1 {
				root, err = filepath.Abs(args[0])
			} else {
				root, err = a.transcriptPath()
			}
			if err != nil {
				return err
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Indexing %s\n", root)

			stats, err := index.IndexAll(cmd.Context(), db, root, a.indexOptions(force))
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-index even when the transcript is unchanged")

	return cmd
}
