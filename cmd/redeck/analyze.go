package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redeck/redeck/internal/cli"
	"github.com/redeck/redeck/internal/pdf"
)

var analyzePage int

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pdf>",
	Short: "Print the inferred structure of one page",
	Long: `Analyze renders a single page and prints the structure document the
vision model infers for it, without writing a deck. Useful for
checking what the model sees before a full conversion.

Examples:
  redeck analyze briefing.pdf --page 3
  redeck analyze briefing.pdf --page 3 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		renderer := pdf.NewRenderer(pdf.Config{DPI: cfg.Render.DPI, Logger: logger})
		image, err := renderer.RenderPage(args[0], analyzePage)
		if err != nil {
			return fmt.Errorf("failed to render page %d: %w", analyzePage, err)
		}

		analyzer, err := buildAnalyzer(cfg, logger)
		if err != nil {
			return err
		}
		doc, err := analyzer.AnalyzePage(ctx, image, analyzePage)
		if err != nil {
			return err
		}
		return cli.Output(doc)
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzePage, "page", 1, "page number to analyze (1-indexed)")
	rootCmd.AddCommand(analyzeCmd)
}
