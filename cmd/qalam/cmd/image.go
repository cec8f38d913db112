package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qalam-ocr/qalam/internal/pipeline"
)

// imageCmd represents the image command.
var imageCmd = &cobra.Command{
	Use:   "image [file...]",
	Short: "Extract Urdu text from images and score it",
	Long: `Extract text from one or more image files using Tesseract OCR.

Supported formats: JPEG, PNG, BMP, TIFF

When a reference transcription is given, each result carries an accuracy
report comparing the extracted text against it.

Examples:
  qalam image scan.png
  qalam image page.jpg --reference-file truth.txt
  qalam image *.png --format json --output results.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

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

		reference, err := resolveTextFlag(cmd, "reference", "reference-file")
		if err != nil {
			return err
		}

		pcfg := pipelineConfigFromApp(cfg)
		applyRecognitionFlags(cmd, &pcfg)

		pl, err := buildPipeline(pcfg, reference)
		if err != nil {
			return fmt.Errorf("failed to build OCR pipeline: %w", err)
		}

		var outputs []string
		for _, path := range args {
			img, err := loadImageFile(path)
			if err != nil {
				return err
			}
			res, err := pl.ProcessImage(cmd.Context(), img)
			if err != nil {
				return fmt.Errorf("OCR failed for %s: %w", path, err)
			}

			var rendered string
			switch format {
			case outputFormatJSON:
				rendered, err = pipeline.ToJSONImage(res)
			default:
				rendered, err = pipeline.ToTextImage(res, cfg.Accuracy.WordPreview)
			}
			if err != nil {
				return fmt.Errorf("failed to render result for %s: %w", path, err)
			}
			outputs = append(outputs, rendered)
		}

		return writeOutput(cmd, outputFile, strings.Join(outputs, "\n"))
	},
}

func init() {
	rootCmd.AddCommand(imageCmd)

	imageCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	imageCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	imageCmd.Flags().StringP("reference", "r", "", "reference transcription to score against")
	imageCmd.Flags().String("reference-file", "", "file containing the reference transcription")
	imageCmd.Flags().StringP("language", "l", "", "comma-separated Tesseract languages (e.g. urd, urd+eng)")
	imageCmd.Flags().Int("psm", 0, "Tesseract page segmentation mode (0-13)")
	imageCmd.Flags().Int("dpi", 0, "resolution hint passed to Tesseract")
	imageCmd.Flags().Bool("no-preprocess", false, "skip grayscale and binarization preprocessing")
}
