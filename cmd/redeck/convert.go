package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/redeck/redeck/internal/pipeline"
)

var (
	convertOut        string
	convertLLMCorrect bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf>",
	Short: "Convert an exported slide PDF into an editable deck",
	Long: `Convert rasterizes every page of the PDF, infers each page's layout
with the vision model, and writes an editable PowerPoint file.

Pages whose analysis still fails after retries become placeholder
slides carrying the page number, so a single bad page never aborts
the deck.

Examples:
  redeck convert briefing.pdf
  redeck convert briefing.pdf --out briefing.pptx
  redeck convert briefing.pdf --llm-correct`,
	Args: cobra.ExactArgs(1),
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
		p, err := buildPipeline(h, cfg, convertLLMCorrect, logger)
		if err != nil {
			return err
		}

		summary, err := p.Convert(ctx, args[0], pipeline.Options{
			OutputPath: convertOut,
		})
		if err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", summary.OutputPath)
		fmt.Printf("  pages:     %d\n", summary.Pages)
		fmt.Printf("  converted: %d\n", summary.Converted)
		fmt.Printf("  fallback:  %d\n", summary.Fallback)
		fmt.Printf("  duration:  %s\n", summary.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertOut, "out", "", "output path (default: <home>/output/<pdf stem>.pptx)")
	convertCmd.Flags().BoolVar(&convertLLMCorrect, "llm-correct", false, "correct OCR text with the configured LLM")
	rootCmd.AddCommand(convertCmd)
}
