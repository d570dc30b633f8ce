package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redeck/redeck/internal/codia"
	"github.com/redeck/redeck/internal/pptx"
)

var (
	codiaOut        string
	codiaLLMCorrect bool
)

var codiaCmd = &cobra.Command{
	Use:   "codia <page.json> [page.json ...]",
	Short: "Build a deck from visual structure documents",
	Long: `Codia builds a deck from per-page visual structure JSON instead of
running vision analysis. Each document becomes one slide: the element
tree is flattened, scaled to the slide canvas, layered images first,
and its text run through OCR correction.

Examples:
  redeck codia page1.json page2.json
  redeck codia page1.json --out deck.pptx --llm-correct`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		deckBuilder, err := buildDeck(cfg, codiaLLMCorrect, logger)
		if err != nil {
			return err
		}

		builder := pptx.NewBuilder()
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			doc, err := codia.ParseDocument(data)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
			builder.AddSlide(deckBuilder.FromCodia(ctx, doc))
		}

		out := codiaOut
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".pptx"
		}
		if err := builder.Build(out); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d slides)\n", out, builder.SlideCount())
		return nil
	},
}

func init() {
	codiaCmd.Flags().StringVar(&codiaOut, "out", "", "output path (default: next to the first document)")
	codiaCmd.Flags().BoolVar(&codiaLLMCorrect, "llm-correct", false, "correct OCR text with the configured LLM")
	rootCmd.AddCommand(codiaCmd)
}
