package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redeck/redeck/internal/scrub"
)

var scrubOut string

var scrubCmd = &cobra.Command{
	Use:   "scrub <pdf>",
	Short: "Paint over the exporter logo in a slide PDF",
	Long: `Scrub covers the vendor logo stamped into the bottom-right corner of
exported slide PDFs with a gradient matched to the surrounding page
colors. The region is configurable under the scrub section of the
config file.

Examples:
  redeck scrub briefing.pdf
  redeck scrub briefing.pdf --out briefing_clean.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		s := scrub.New(scrub.Config{
			LogoLeft: cfg.Scrub.LogoLeft,
			LogoTop:  cfg.Scrub.LogoTop,
			Logger:   logger,
		})
		out, err := s.Clean(args[0], scrubOut)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	},
}

func init() {
	scrubCmd.Flags().StringVar(&scrubOut, "out", "", "output path (default: <pdf stem>_clean.pdf)")
	rootCmd.AddCommand(scrubCmd)
}
