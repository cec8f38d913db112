package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qalam-ocr/qalam/internal/pipeline"
)

// pdfCmd represents the pdf command.
var pdfCmd = &cobra.Command{
	Use:   "pdf [file...]",
	Short: "Extract Urdu text from PDF files and score it",
	Long: `Process PDF files by extracting their embedded page images and running
OCR on each page. Works best with scanned PDFs.

When a reference transcription is given, every page carries an accuracy
report comparing its text against it.

Examples:
  qalam pdf book.pdf
  qalam pdf scan.pdf --pages 1-5
  qalam pdf *.pdf --format json --reference-file truth.txt`,
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

		pages, _ := cmd.Flags().GetString("pages")

		reference, err := resolveTextFlag(cmd, "reference", "reference-file")
		if err != nil {
			return err
		}

		pcfg := pipelineConfigFromApp(cfg)
		if cfg.PDF.DPI > 0 {
			pcfg.Tesseract.DPI = cfg.PDF.DPI
		}
		applyRecognitionFlags(cmd, &pcfg)
		if cmd.Flags().Changed("workers") {
			pcfg.Workers, _ = cmd.Flags().GetInt("workers")
		}

		pl, err := buildPipeline(pcfg, reference)
		if err != nil {
			return fmt.Errorf("failed to build OCR pipeline: %w", err)
		}

		var outputs []string
		for _, path := range args {
			res, err := pl.ProcessPDF(cmd.Context(), path, pages)
			if err != nil {
				return fmt.Errorf("OCR failed for %s: %w", path, err)
			}
			pipeline.SortPages(res)

			var rendered string
			switch format {
			case outputFormatJSON:
				rendered, err = pipeline.ToJSONPDF(res)
			default:
				rendered, err = pipeline.ToTextPDF(res, cfg.Accuracy.WordPreview)
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
	rootCmd.AddCommand(pdfCmd)

	pdfCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	pdfCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	pdfCmd.Flags().String("pages", "", "page range to process (e.g., '1-5', '1,3,5')")
	pdfCmd.Flags().StringP("reference", "r", "", "reference transcription to score against")
	pdfCmd.Flags().String("reference-file", "", "file containing the reference transcription")
	pdfCmd.Flags().StringP("language", "l", "", "comma-separated Tesseract languages (e.g. urd, urd+eng)")
	pdfCmd.Flags().Int("psm", 0, "Tesseract page segmentation mode (0-13)")
	pdfCmd.Flags().Int("dpi", 0, "resolution hint passed to Tesseract")
	pdfCmd.Flags().Int("workers", 0, "concurrent page workers (0 = number of CPUs)")
	pdfCmd.Flags().Bool("no-preprocess", false, "skip grayscale and binarization preprocessing")
}
