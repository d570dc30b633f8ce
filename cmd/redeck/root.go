package main

import (
	"github.com/spf13/cobra"

	"github.com/redeck/redeck/internal/cli"
	"github.com/redeck/redeck/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "redeck",
	Short: "Rebuild editable slide decks from exported PDFs",
	Long: `Redeck turns rasterized slide exports back into editable decks.

Each PDF page is rendered to an image, a vision model infers the page
structure, OCR-damaged text is corrected in two stages, and the result
is written as a PowerPoint file.

The pipeline includes:
  - Page rasterization sized for the vision API budget
  - Structure analysis with bounded retries and fallback slides
  - Regex plus optional LLM text correction
  - Visual-structure documents as an alternate input path
  - Logo scrubbing for exported PDFs`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.redeck/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "redeck home directory (default: ~/.redeck)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
