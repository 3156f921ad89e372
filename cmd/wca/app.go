package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/chat"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/classify"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/config"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/index"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/logging"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/parse"
	"github.com/Zuo-Peng/wa-chat-analyzer/internal/scan"
)

var errNoTranscript = errors.New("no transcript: pass --transcript or set transcript in the config file")

// app carries the persistent flags and the loaded config shared by every
// subcommand.
type app struct {
	configPath string
	transcript string
	logLevel   string

	cfg *config.Config
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.transcript != "" {
		cfg.Transcript = a.transcript
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	logging.Init(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logging.L().Debug().Str(logging.FieldCommand, cmd.Name()).Msg("start")
	return nil
}

// transcriptPath returns the configured transcript as an absolute path so
// index keys do not depend on the working directory.
func (a *app) transcriptPath() (string, error) {
	if a.cfg.Transcript == "" {
		return "", errNoTranscript
	}
	return filepath.Abs(a.cfg.Transcript)
}

func (a *app) loadOptions() chat.LoadOptions {
	return chat.LoadOptions{
		Options: chat.Options{
			Parse: parse.Options{
				DayFirst:    a.cfg.DayFirst,
				MediaTokens: a.cfg.MediaTokens,
			},
			MergeContinuations: a.cfg.MergeContinuations,
		},
		ReadTimeout: a.cfg.ReadTimeoutDuration(),
		MaxLineSize: scan.DefaultMaxLineSize,
	}
}

func (a *app) sentimenter() *classify.Lexicon {
	return classify.NewLexicon(a.cfg.Sentiment.Lexicon, a.cfg.Sentiment.Threshold)
}

func (a *app) flirter() *classify.MarkerFlirter {
	return classify.NewMarkerFlirter(a.cfg.FlirtMarkers)
}

// loadTable reads and parses the configured transcript.
func (a *app) loadTable(ctx context.Context) (*chat.Table, string, error) {
	path, err := a.transcriptPath()
	if err != nil {
		return nil, "", err
	}
	t, err := chat.Load(ctx, path, a.loadOptions())
	if err != nil {
		return nil, "", err
	}
	return t, path, nil
}

func (a *app) openDB() (*index.DB, error) {
	db, err := index.OpenDB(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

func (a *app) indexOptions(force bool) index.Options {
	return index.Options{
		Load:        a.loadOptions(),
		Sentimenter: a.sentimenter(),
		Force:       force,
		Fingerprint: index.Fingerprint(
			a.cfg.DayFirst,
			a.cfg.MergeContinuations,
			a.cfg.MediaTokens,
			a.cfg.Sentiment.Threshold,
			a.cfg.Sentiment.Lexicon,
		),
	}
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
