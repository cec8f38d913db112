package config

import (
	"fmt"
	"strings"
)

// DefaultConfig returns the default configuration for all commands.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Tesseract: TesseractConfig{
			Languages: []string{"urd"},
			DPI:       300,
		},
		Preprocess: PreprocessConfig{
			Grayscale: true,
			Binarize:  true,
		},
		PDF: PDFConfig{
			DPI:     300,
			Workers: 0,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      120,
			ShutdownTimeout: 10,
		},
		Accuracy: AccuracyConfig{
			WordPreview: 10,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := c.validateGlobal(); err != nil {
		return err
	}
	if err := c.Tesseract.Validate(); err != nil {
		return err
	}
	if err := c.PDF.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Accuracy.Validate()
}

func (c *Config) validateGlobal() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
}

// Validate checks Tesseract settings.
func (t *TesseractConfig) Validate() error {
	if len(t.Languages) == 0 {
		return fmt.Errorf("at least one tesseract language must be configured")
	}
	for _, lang := range t.Languages {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("tesseract language must not be blank")
		}
	}
	if t.DPI < 0 {
		return fmt.Errorf("invalid tesseract dpi: %d (must not be negative)", t.DPI)
	}
	if t.PSM < 0 || t.PSM > 13 {
		return fmt.Errorf("invalid tesseract psm: %d (must be between 0 and 13)", t.PSM)
	}
	return nil
}

// Validate checks PDF processing settings.
func (p *PDFConfig) Validate() error {
	if p.DPI < 0 {
		return fmt.Errorf("invalid pdf dpi: %d (must not be negative)", p.DPI)
	}
	if p.Workers < 0 {
		return fmt.Errorf("invalid pdf workers: %d (must not be negative)", p.Workers)
	}
	return nil
}

// Validate checks output settings.
func (o *OutputConfig) Validate() error {
	switch o.Format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("invalid output format: %s (must be one of: text, json)", o.Format)
}

// Validate checks server settings.
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", s.Port)
	}
	if s.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d MB (must be positive)", s.MaxUploadMB)
	}
	if s.TimeoutSec <= 0 {
		return fmt.Errorf("invalid server timeout: %d (must be positive)", s.TimeoutSec)
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must be positive)", s.ShutdownTimeout)
	}
	return nil
}

// Validate checks accuracy reporting settings.
func (a *AccuracyConfig) Validate() error {
	if a.WordPreview < 0 {
		return fmt.Errorf("invalid accuracy word preview: %d (must not be negative)", a.WordPreview)
	}
	return nil
}
