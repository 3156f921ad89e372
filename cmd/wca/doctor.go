package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
)

func doctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, transcript, DB and FTS5, and show stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("=== Config ===")
			if a.configPath != "" {
				fmt.Printf("  File:        %s\n", a.configPath)
			}
			fmt.Printf("  Day first:   %t\n", a.cfg.DayFirst)
			fmt.Printf("  Merge cont.: %t\n", a.cfg.MergeContinuations)
			if a.cfg.MetricsAddr != "" {
				fmt.Printf("  Metrics:     http://%s/metrics\n", a.cfg.MetricsAddr)
			}

			fmt.Println("\n=== Transcript ===")
			path, err := a.transcriptPath()
			switch {
			case errors.Is(err, errNoTranscript):
				fmt.Println("  Status: NOT CONFIGURED")
			case err != nil:
				return err
			default:
				checkTranscript(cmd, a, path)
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", a.cfg.DBPath)
			if _, err := os.Stat(a.cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'wca index' first)")
				return nil
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			transcriptCount, err := db.TranscriptCount()
			if err != nil {
				return fmt.Errorf("count transcripts: %w", err)
			}
			messageCount, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}

			fmt.Printf("  Transcripts: %d\n", transcriptCount)
			fmt.Printf("  Messages:    %d\n", messageCount)

			fmt.Println("\n=== FTS5 ===")
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == messageCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (messages=%d, fts=%d)\n", messageCount, ftsCount)
				}
			}

			if info, err := os.Stat(a.cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkTranscript(cmd *cobra.Command, a *app, path string) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("  %s (NOT FOUND)\n", path)
		return
	}
	if info.IsDir() {
		fmt.Printf("  %s (IS A DIRECTORY)\n", path)
		return
	}
	fmt.Printf("  %s (OK, %d bytes)\n", path, info.Size())

	t, err := chat.Load(cmd.Context(), path, a.loadOptions())
	if err != nil {
		fmt.Printf("  Load error: %v\n", err)
		return
	}
	st := t.Stats()
	fmt.Printf("  Lines:    %d\n", st.Lines)
	fmt.Printf("  Records:  %d\n", t.Len())
	fmt.Printf("  Senders:  %d\n", len(t.Users()))
	fmt.Printf("  Unknown timestamps: %d\n", st.UnknownTimestamps)
	if reasons := st.SkipReasons(); len(reasons) > 0 {
		parts := make([]string, 0, len(reasons))
		for _, r := range reasons {
			parts = append(parts, fmt.Sprintf("%s=%d", r, st.Skipped[r]))
		}
		fmt.Printf("  Skipped:  %s\n", strings.Join(parts, ", "))
	}
}
