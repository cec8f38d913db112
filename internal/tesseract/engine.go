package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// ErrLanguageMissing indicates a configured trained-data pack is not
// installed in the tessdata directory.
var ErrLanguageMissing = errors.New("tesseract language pack not installed")

// Config holds settings for the Tesseract engine.
type Config struct {
	// Languages lists trained-data packs, in priority order.
	Languages []string
	// TessdataDir overrides the tessdata directory; empty uses the
	// system default.
	TessdataDir string
	// PSM is the page segmentation mode; 0 keeps the engine default.
	PSM int
	// DPI is the assumed input resolution; 0 means unknown.
	DPI int
}

// DefaultConfig returns engine defaults for Urdu recognition.
func DefaultConfig() Config {
	return Config{
		Languages: []string{"urd"},
		DPI:       300,
	}
}

// Result is the recognition output for a single image.
type Result struct {
	// Text is the recognized text, trimmed. Empty means no text was
	// detected; that is not an error.
	Text string
	// Confidence is the mean word confidence in [0, 1].
	Confidence float64
	// Words is the number of recognized word tokens.
	Words int
}

// Engine recognizes text in images using Tesseract via gosseract.
type Engine struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed recognition engine.
func NewEngine(cfg Config) *Engine {
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultConfig().Languages
	}
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

// Recognize performs OCR on a single image.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	data, err := encodePNG(img)
	if err != nil {
		return Result{}, fmt.Errorf("encode image: %w", err)
	}

	c := e.newClient()
	defer func() { _ = c.Close() }()

	if err := c.SetImageFromBytes(data); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(e.cfg.Languages...); err != nil {
		return Result{}, fmt.Errorf("set languages: %w", err)
	}
	if e.cfg.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.cfg.PSM)); err != nil {
			return Result{}, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if e.cfg.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(e.cfg.DPI)); err != nil {
			return Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}

	words, confidence := wordConfidences(c)
	return Result{
		Text:       strings.TrimSpace(text),
		Confidence: confidence,
		Words:      words,
	}, nil
}

// Available reports whether the Tesseract installation is usable. It is a
// capability probe for the CLI and server wiring; the scoring engine never
// depends on it.
func (e *Engine) Available() error {
	c := e.newClient()
	defer func() { _ = c.Close() }()

	if _, err := c.GetAvailableLanguages(); err != nil {
		return fmt.Errorf("tesseract not available: %w", err)
	}
	return nil
}

// EnsureLanguages verifies every configured trained-data pack is installed.
func (e *Engine) EnsureLanguages() error {
	c := e.newClient()
	defer func() { _ = c.Close() }()

	installed, err := c.GetAvailableLanguages()
	if err != nil {
		return fmt.Errorf("tesseract not available: %w", err)
	}
	for _, lang := range e.cfg.Languages {
		if !containsLanguage(installed, lang) {
			return fmt.Errorf("%w: %s", ErrLanguageMissing, lang)
		}
	}
	return nil
}

func (e *Engine) newClient() *gosseract.Client {
	c := e.clientFactory()
	if e.cfg.TessdataDir != "" {
		c.TessdataPrefix = e.cfg.TessdataDir
	}
	return c
}

func containsLanguage(installed []string, lang string) bool {
	for _, l := range installed {
		if l == lang {
			return true
		}
	}
	return false
}

// wordConfidences extracts word count and mean confidence from the client
// after Text() has run. Failures degrade to zero values since confidence is
// advisory.
func wordConfidences(c *gosseract.Client) (int, float64) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0, 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return len(boxes), sum / float64(len(boxes)) / 100.0
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
