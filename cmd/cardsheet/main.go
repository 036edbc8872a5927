package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/cardprep/internal"
	"codeberg.org/snonux/cardprep/internal/printsheet"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cardsheet [images-dir] [output-file]",
	Short: "Printable flashcard sheets",
	Long: `cardsheet lays out every JPEG of a directory on 4 cm cards, 24 to an
A4 page, with grey cut lines between the cards.

Example:
  cardsheet                                   # shared/static/images -> image_cards.pdf
  cardsheet ./images animals.pdf`,
	Args:    cobra.MaximumNArgs(2),
	RunE:    runCommand,
	Version: internal.Version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	imagesDir := printsheet.DefaultImagesDir
	outputFile := printsheet.DefaultOutputFile

	if len(args) > 0 {
		imagesDir = args[0]
	}
	if len(args) > 1 {
		outputFile = args[1]
	}

	if _, err := printsheet.Generate(imagesDir, outputFile); err != nil {
		return fmt.Errorf("failed to generate card sheet: %w", err)
	}
	return nil
}
