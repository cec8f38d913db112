package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qalam-ocr/qalam/internal/accuracy"
	"github.com/qalam-ocr/qalam/internal/pdf"
	"github.com/qalam-ocr/qalam/internal/preprocess"
	"github.com/qalam-ocr/qalam/internal/tesseract"
)

// Recognizer is the recognition contract the pipeline depends on. The
// production implementation is the Tesseract engine; tests substitute fakes.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (tesseract.Result, error)
}

// Config holds configuration for the OCR pipeline and its components.
type Config struct {
	Tesseract  tesseract.Config
	Preprocess preprocess.Options
	// Workers bounds concurrent PDF page processing; 0 means NumCPU.
	Workers int
	// Reference, when non-empty, makes the pipeline attach an accuracy
	// report to every result.
	Reference string
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Tesseract:  tesseract.DefaultConfig(),
		Preprocess: preprocess.DefaultOptions(),
		Workers:    0,
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg        Config
	recognizer Recognizer
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole pipeline configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLanguages sets the recognition languages.
func (b *Builder) WithLanguages(langs ...string) *Builder {
	if len(langs) > 0 {
		b.cfg.Tesseract.Languages = langs
	}
	return b
}

// WithTessdataDir overrides the tessdata directory.
func (b *Builder) WithTessdataDir(dir string) *Builder {
	if dir != "" {
		b.cfg.Tesseract.TessdataDir = dir
	}
	return b
}

// WithDPI sets the resolution hint forwarded to recognition.
func (b *Builder) WithDPI(dpi int) *Builder {
	if dpi > 0 {
		b.cfg.Tesseract.DPI = dpi
	}
	return b
}

// WithPSM sets the Tesseract page segmentation mode.
func (b *Builder) WithPSM(psm int) *Builder {
	if psm > 0 {
		b.cfg.Tesseract.PSM = psm
	}
	return b
}

// WithPreprocess sets the image preparation options.
func (b *Builder) WithPreprocess(opts preprocess.Options) *Builder {
	b.cfg.Preprocess = opts
	return b
}

// WithWorkers bounds concurrent PDF page processing.
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Workers = n
	}
	return b
}

// WithReference enables accuracy scoring against the given reference text.
func (b *Builder) WithReference(reference string) *Builder {
	b.cfg.Reference = reference
	return b
}

// WithRecognizer injects a recognition engine, overriding the default
// Tesseract engine. Used by tests and by callers that manage engine
// lifecycle themselves.
func (b *Builder) WithRecognizer(r Recognizer) *Builder {
	b.recognizer = r
	return b
}

// Build assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if len(b.cfg.Tesseract.Languages) == 0 {
		return nil, fmt.Errorf("no recognition languages configured")
	}

	recognizer := b.recognizer
	if recognizer == nil {
		recognizer = tesseract.NewEngine(b.cfg.Tesseract)
	}

	return &Pipeline{
		cfg:        b.cfg,
		recognizer: recognizer,
	}, nil
}

// Pipeline orchestrates preprocessing, recognition and optional accuracy
// scoring. It is safe for concurrent use.
type Pipeline struct {
	cfg        Config
	recognizer Recognizer
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// ProcessImage runs preprocessing and recognition on a single image.
func (p *Pipeline) ProcessImage(ctx context.Context, img image.Image) (*ImageResult, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}

	start := time.Now()
	prepared := preprocess.Apply(img, p.cfg.Preprocess)
	preprocessDone := time.Now()

	recognized, err := p.recognizer.Recognize(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("recognition failed: %w", err)
	}
	done := time.Now()

	bounds := img.Bounds()
	result := &ImageResult{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Text:       recognized.Text,
		Confidence: recognized.Confidence,
		Words:      recognized.Words,
	}
	result.Processing.PreprocessNs = preprocessDone.Sub(start).Nanoseconds()
	result.Processing.RecognizeNs = done.Sub(preprocessDone).Nanoseconds()
	result.Processing.TotalNs = done.Sub(start).Nanoseconds()

	if p.cfg.Reference != "" {
		report := accuracy.Score(recognized.Text, p.cfg.Reference)
		result.Accuracy = &report
	}

	slog.Debug("processed image",
		"width", result.Width, "height", result.Height,
		"chars", len(recognized.Text), "confidence", recognized.Confidence)

	return result, nil
}

// PageProgress reports a completed page during PDF processing.
type PageProgress struct {
	PageNumber int
	TotalPages int
	Result     *PDFPageResult
}

// ProcessPDF extracts page images from a PDF and recognizes each page.
// Pages run concurrently, bounded by the configured worker count.
func (p *Pipeline) ProcessPDF(ctx context.Context, filename, pageRange string) (*PDFResult, error) {
	return p.ProcessPDFWithProgress(ctx, filename, pageRange, nil)
}

// ProcessPDFWithProgress is ProcessPDF with a per-page completion callback.
// The callback runs serialized; pages complete in no particular order.
func (p *Pipeline) ProcessPDFWithProgress(
	ctx context.Context,
	filename, pageRange string,
	progress func(PageProgress),
) (*PDFResult, error) {
	if err := pdf.ValidateFile(filename); err != nil {
		return nil, err
	}

	start := time.Now()
	pageImages, err := pdf.ExtractPageImages(filename, pageRange)
	if err != nil {
		return nil, err
	}
	extractionDone := time.Now()

	pages := pdf.Pages(pageImages)
	result := &PDFResult{
		Filename:   filename,
		TotalPages: len(pages),
		Pages:      make([]PDFPageResult, len(pages)),
	}

	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, pageNum := range pages {
		g.Go(func() error {
			pageResult, err := p.processPage(gctx, pageNum, pageImages[pageNum])
			if err != nil {
				return fmt.Errorf("page %d: %w", pageNum, err)
			}
			mu.Lock()
			result.Pages[i] = *pageResult
			if progress != nil {
				progress(PageProgress{
					PageNumber: pageNum,
					TotalPages: len(pages),
					Result:     pageResult,
				})
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	done := time.Now()
	result.Processing.ExtractionNs = extractionDone.Sub(start).Nanoseconds()
	result.Processing.TotalNs = done.Sub(start).Nanoseconds()

	slog.Info("processed PDF", "filename", filename, "pages", len(pages),
		"duration", done.Sub(start))

	return result, nil
}

func (p *Pipeline) processPage(ctx context.Context, pageNum int, images []image.Image) (*PDFPageResult, error) {
	page := &PDFPageResult{
		PageNumber: pageNum,
		Images:     make([]ImageResult, 0, len(images)),
	}

	texts := make([]string, 0, len(images))
	for _, img := range images {
		imgResult, err := p.ProcessImage(ctx, img)
		if err != nil {
			return nil, err
		}
		// Page-level scoring happens below on the joined text.
		imgResult.Accuracy = nil
		page.Images = append(page.Images, *imgResult)
		if imgResult.Text != "" {
			texts = append(texts, imgResult.Text)
		}
	}
	page.Text = strings.Join(texts, "\n")

	if p.cfg.Reference != "" {
		report := accuracy.Score(page.Text, p.cfg.Reference)
		page.Accuracy = &report
	}
	return page, nil
}

// SortPages orders a PDF result's pages ascending by page number.
func SortPages(res *PDFResult) {
	sort.SliceStable(res.Pages, func(i, j int) bool {
		return res.Pages[i].PageNumber < res.Pages[j].PageNumber
	})
}
