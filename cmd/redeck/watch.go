package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/redeck/redeck/internal/pipeline"
	"github.com/redeck/redeck/internal/watch"
)

var watchLLMCorrect bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Convert PDFs dropped into a directory",
	Long: `Watch monitors a directory and converts every PDF dropped into it.
Files are picked up once they stop growing, converted decks land in
the home output directory, and failures are logged without stopping
the watcher.

The directory defaults to the watch.dir config key, then to the home
inbox. Stop with Ctrl+C.

Examples:
  redeck watch
  redeck watch ~/Downloads/slides`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		h, err := setupHome()
		if err != nil {
			return err
		}
		p, err := buildPipeline(h, cfg, watchLLMCorrect, logger)
		if err != nil {
			return err
		}

		dir := cfg.Watch.Dir
		if len(args) > 0 {
			dir = args[0]
		}
		if dir == "" {
			dir = h.InboxDir()
		}

		w := watch.New(watch.Config{
			Dir:          dir,
			PollInterval: cfg.Watch.PollInterval(),
			StablePolls:  cfg.Watch.StablePolls,
			Logger:       logger,
		}, func(ctx context.Context, pdfPath string) error {
			_, err := p.Convert(ctx, pdfPath, pipeline.Options{})
			return err
		})
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchLLMCorrect, "llm-correct", false, "correct OCR text with the configured LLM")
	rootCmd.AddCommand(watchCmd)
}
