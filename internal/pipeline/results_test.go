package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qalam-ocr/qalam/internal/accuracy"
)

func sampleImageResult() *ImageResult {
	report := accuracy.Score("hello", "hello world")
	return &ImageResult{
		Width:    100,
		Height:   40,
		Text:     "hello",
		Accuracy: &report,
	}
}

func TestToJSONImage(t *testing.T) {
	out, err := ToJSONImage(sampleImageResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "hello", decoded["text"])
	require.Contains(t, decoded, "accuracy")

	_, err = ToJSONImage(nil)
	assert.Error(t, err)
}

func TestToTextImage(t *testing.T) {
	out, err := ToTextImage(sampleImageResult(), 10)
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "Accuracy:")
	assert.Contains(t, out, "Words:      50.00%")
	assert.Contains(t, out, "Missing words (1): world")

	empty := &ImageResult{}
	out, err = ToTextImage(empty, 10)
	require.NoError(t, err)
	assert.Contains(t, out, "No text detected")
}

func TestToTextPDF(t *testing.T) {
	res := &PDFResult{
		Filename:   "scan.pdf",
		TotalPages: 2,
		Pages: []PDFPageResult{
			{PageNumber: 1, Text: "صفحہ اول"},
			{PageNumber: 2},
		},
	}

	out, err := ToTextPDF(res, 10)
	require.NoError(t, err)
	assert.Contains(t, out, "scan.pdf: 2 page(s)")
	assert.Contains(t, out, "--- Page 1 ---")
	assert.Contains(t, out, "صفحہ اول")
	assert.Contains(t, out, "--- Page 2 ---")
	assert.Contains(t, out, "No text detected")
}

func TestFormatAccuracy_PreviewTruncation(t *testing.T) {
	report := accuracy.Score("", "one two three four")
	out := FormatAccuracy(&report, 2)
	assert.Contains(t, out, "Missing words (4):")
	assert.Contains(t, out, ", ...")

	// Zero preview shows everything.
	out = FormatAccuracy(&report, 0)
	assert.NotContains(t, out, "...")
}
