package cmd

import (
	"fmt"
	"image"
	"os"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/qalam-ocr/qalam/internal/config"
	"github.com/qalam-ocr/qalam/internal/pipeline"
	"github.com/qalam-ocr/qalam/internal/preprocess"
	"github.com/qalam-ocr/qalam/internal/tesseract"
)

const (
	outputFormatText = "text"
	outputFormatJSON = "json"
)

// pipelineConfigFromApp maps the application configuration onto a
// pipeline configuration.
func pipelineConfigFromApp(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		Tesseract: tesseract.Config{
			Languages:   cfg.Tesseract.Languages,
			TessdataDir: cfg.Tesseract.TessdataDir,
			PSM:         cfg.Tesseract.PSM,
			DPI:         cfg.Tesseract.DPI,
		},
		Preprocess: preprocess.Options{
			Grayscale: cfg.Preprocess.Grayscale,
			Binarize:  cfg.Preprocess.Binarize,
		},
		Workers: cfg.PDF.Workers,
	}
}

// applyRecognitionFlags folds per-command recognition flags into the
// pipeline configuration. Flags win over config file and environment.
func applyRecognitionFlags(cmd *cobra.Command, pcfg *pipeline.Config) {
	if cmd.Flags().Changed("language") {
		langCSV, _ := cmd.Flags().GetString("language")
		pcfg.Tesseract.Languages = splitCSV(langCSV)
	}
	if cmd.Flags().Changed("psm") {
		pcfg.Tesseract.PSM, _ = cmd.Flags().GetInt("psm")
	}
	if cmd.Flags().Changed("dpi") {
		pcfg.Tesseract.DPI, _ = cmd.Flags().GetInt("dpi")
	}
	if cmd.Flags().Changed("no-preprocess") {
		if skip, _ := cmd.Flags().GetBool("no-preprocess"); skip {
			pcfg.Preprocess = preprocess.Options{}
		}
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveTextFlag returns the inline flag value, or the contents of the
// companion file flag when the inline one is unset.
func resolveTextFlag(cmd *cobra.Command, inlineFlag, fileFlag string) (string, error) {
	inline, _ := cmd.Flags().GetString(inlineFlag)
	if inline != "" {
		return inline, nil
	}
	path, _ := cmd.Flags().GetString(fileFlag)
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func validateFormat(format string) error {
	if format != outputFormatText && format != outputFormatJSON {
		return fmt.Errorf("invalid output format: %s (must be one of: %s, %s)",
			format, outputFormatText, outputFormatJSON)
	}
	return nil
}

// writeOutput writes content to the output file, or stdout when no file
// is given.
func writeOutput(cmd *cobra.Command, outputFile, content string) error {
	if outputFile == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	return nil
}

func loadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// buildPipeline assembles a pipeline whose Tesseract engine has been
// verified to have the requested language packs.
func buildPipeline(pcfg pipeline.Config, reference string) (*pipeline.Pipeline, error) {
	engine := tesseract.NewEngine(pcfg.Tesseract)
	if err := engine.EnsureLanguages(); err != nil {
		return nil, err
	}
	return pipeline.NewBuilder().
		WithConfig(pcfg).
		WithRecognizer(engine).
		WithReference(reference).
		Build()
}
