package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qalam-ocr/qalam/internal/accuracy"
	"github.com/qalam-ocr/qalam/internal/pipeline"
)

// scoreCmd represents the score command.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score already-extracted text against a reference",
	Long: `Compare an extracted text against a reference transcription without
running OCR. Produces the same accuracy report the image and pdf
commands attach to their results.

Examples:
  qalam score --extracted "سلام دنیا" --reference "سلام دنیا"
  qalam score --extracted-file out.txt --reference-file truth.txt --format json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		if err := validateFormat(format); err != nil {
			return err
		}

		outputFile := cfg.Output.File
		if cmd.Flags().Changed("output") {
			outputFile, _ = cmd.Flags().GetString("output")
		}

		extracted, err := resolveTextFlag(cmd, "extracted", "extracted-file")
		if err != nil {
			return err
		}
		reference, err := resolveTextFlag(cmd, "reference", "reference-file")
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("extracted") && !cmd.Flags().Changed("extracted-file") {
			return errors.New("either --extracted or --extracted-file is required")
		}
		if !cmd.Flags().Changed("reference") && !cmd.Flags().Changed("reference-file") {
			return errors.New("either --reference or --reference-file is required")
		}

		report := accuracy.Score(extracted, reference)

		var rendered string
		switch format {
		case outputFormatJSON:
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}
			rendered = string(data)
		default:
			rendered = pipeline.FormatAccuracy(&report, cfg.Accuracy.WordPreview)
		}

		return writeOutput(cmd, outputFile, rendered)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("extracted", "e", "", "extracted text to score")
	scoreCmd.Flags().String("extracted-file", "", "file containing the extracted text")
	scoreCmd.Flags().StringP("reference", "r", "", "reference transcription")
	scoreCmd.Flags().String("reference-file", "", "file containing the reference transcription")
	scoreCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	scoreCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}
