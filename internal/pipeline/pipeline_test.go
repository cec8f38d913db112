package pipeline

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalam-ocr/qalam/internal/preprocess"
	"github.com/qalam-ocr/qalam/internal/tesseract"
)

// fakeRecognizer returns canned text for every image.
type fakeRecognizer struct {
	text  string
	err   error
	calls atomic.Int64
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img image.Image) (tesseract.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return tesseract.Result{}, f.err
	}
	return tesseract.Result{Text: f.text, Confidence: 0.9, Words: len(f.text)}, nil
}

func buildPipeline(t *testing.T, b *Builder) *Pipeline {
	t.Helper()
	p, err := b.Build()
	require.NoError(t, err)
	return p
}

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 8, 8))
}

func TestBuilderDefaults(t *testing.T) {
	p := buildPipeline(t, NewBuilder().WithRecognizer(&fakeRecognizer{}))
	cfg := p.Config()
	assert.Equal(t, []string{"urd"}, cfg.Tesseract.Languages)
	assert.True(t, cfg.Preprocess.Binarize)
}

func TestBuilderRejectsNoLanguages(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tesseract.Languages = nil
	_, err := NewBuilder().WithConfig(cfg).Build()
	assert.Error(t, err)
}

func TestProcessImage(t *testing.T) {
	rec := &fakeRecognizer{text: "یہ ایک امتحان ہے"}
	p := buildPipeline(t, NewBuilder().WithRecognizer(rec))

	res, err := p.ProcessImage(context.Background(), testImage())
	require.NoError(t, err)

	assert.Equal(t, "یہ ایک امتحان ہے", res.Text)
	assert.Equal(t, 8, res.Width)
	assert.Equal(t, 8, res.Height)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
	assert.Nil(t, res.Accuracy)
	assert.GreaterOrEqual(t, res.Processing.TotalNs, int64(0))
}

func TestProcessImage_NilImage(t *testing.T) {
	p := buildPipeline(t, NewBuilder().WithRecognizer(&fakeRecognizer{}))
	_, err := p.ProcessImage(context.Background(), nil)
	assert.Error(t, err)
}

func TestProcessImage_RecognizerError(t *testing.T) {
	boom := errors.New("engine exploded")
	p := buildPipeline(t, NewBuilder().WithRecognizer(&fakeRecognizer{err: boom}))

	_, err := p.ProcessImage(context.Background(), testImage())
	assert.ErrorIs(t, err, boom)
}

func TestProcessImage_WithReference(t *testing.T) {
	rec := &fakeRecognizer{text: "hello"}
	p := buildPipeline(t, NewBuilder().
		WithRecognizer(rec).
		WithReference("hello world"))

	res, err := p.ProcessImage(context.Background(), testImage())
	require.NoError(t, err)

	require.NotNil(t, res.Accuracy)
	assert.InDelta(t, 50.0, res.Accuracy.WordAccuracy, 1e-9)
	assert.Equal(t, []string{"world"}, res.Accuracy.MissingWords)
}

func TestProcessImage_WithPreprocessDisabled(t *testing.T) {
	rec := &fakeRecognizer{text: "x"}
	p := buildPipeline(t, NewBuilder().
		WithRecognizer(rec).
		WithPreprocess(preprocess.Options{}))

	_, err := p.ProcessImage(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.calls.Load())
}

func TestProcessPDF_MissingFile(t *testing.T) {
	p := buildPipeline(t, NewBuilder().WithRecognizer(&fakeRecognizer{}))
	_, err := p.ProcessPDF(context.Background(), "/nonexistent/file.pdf", "")
	assert.Error(t, err)
}

func TestProcessPDF_RejectsNonPDF(t *testing.T) {
	p := buildPipeline(t, NewBuilder().WithRecognizer(&fakeRecognizer{}))
	_, err := p.ProcessPDF(context.Background(), "pipeline.go", "")
	assert.Error(t, err)
}

func TestProcessPage(t *testing.T) {
	rec := &fakeRecognizer{text: "line"}
	p := buildPipeline(t, NewBuilder().
		WithRecognizer(rec).
		WithReference("line"))

	page, err := p.processPage(context.Background(), 3, []image.Image{testImage(), testImage()})
	require.NoError(t, err)

	assert.Equal(t, 3, page.PageNumber)
	assert.Len(t, page.Images, 2)
	assert.Equal(t, "line\nline", page.Text)
	require.NotNil(t, page.Accuracy)
	// Duplicate words collapse; the page still misses nothing.
	assert.Empty(t, page.Accuracy.MissingWords)
	// Scoring happens once per page, not per image.
	for _, img := range page.Images {
		assert.Nil(t, img.Accuracy)
	}
}

func TestSortPages(t *testing.T) {
	res := &PDFResult{Pages: []PDFPageResult{
		{PageNumber: 3}, {PageNumber: 1}, {PageNumber: 2},
	}}
	SortPages(res)
	assert.Equal(t, 1, res.Pages[0].PageNumber)
	assert.Equal(t, 2, res.Pages[1].PageNumber)
	assert.Equal(t, 3, res.Pages[2].PageNumber)
}
