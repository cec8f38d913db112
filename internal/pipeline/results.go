package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/qalam-ocr/qalam/internal/accuracy"
)

// ToJSONImage serializes a single ImageResult to pretty JSON.
func ToJSONImage(res *ImageResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJSONPDF serializes a PDFResult to pretty JSON.
func ToJSONPDF(res *PDFResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToTextImage renders an ImageResult for terminal output. wordPreview bounds
// how many missing/extra words the accuracy section lists.
func ToTextImage(res *ImageResult, wordPreview int) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}

	var b strings.Builder
	if res.Text == "" {
		b.WriteString("No text detected\n")
	} else {
		b.WriteString(res.Text)
		b.WriteString("\n")
	}
	if res.Accuracy != nil {
		b.WriteString("\n")
		b.WriteString(FormatAccuracy(res.Accuracy, wordPreview))
	}
	return b.String(), nil
}

// ToTextPDF renders a PDFResult for terminal output, page by page.
func ToTextPDF(res *PDFResult, wordPreview int) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d page(s)\n", res.Filename, res.TotalPages)
	for _, page := range res.Pages {
		fmt.Fprintf(&b, "\n--- Page %d ---\n", page.PageNumber)
		if page.Text == "" {
			b.WriteString("No text detected\n")
		} else {
			b.WriteString(page.Text)
			b.WriteString("\n")
		}
		if page.Accuracy != nil {
			b.WriteString("\n")
			b.WriteString(FormatAccuracy(page.Accuracy, wordPreview))
		}
	}
	return b.String(), nil
}

// FormatAccuracy renders an accuracy report for terminal output. The full
// word sets live in the report; only wordPreview of each are listed here.
func FormatAccuracy(report *accuracy.Report, wordPreview int) string {
	var b strings.Builder
	b.WriteString("Accuracy:\n")
	fmt.Fprintf(&b, "  Overall:    %.2f%%\n", report.OverallAccuracy)
	fmt.Fprintf(&b, "  Characters: %.2f%%\n", report.CharacterAccuracy)
	fmt.Fprintf(&b, "  Words:      %.2f%%\n", report.WordAccuracy)
	fmt.Fprintf(&b, "  Similarity: %.2f%%\n", report.SimilarityScore)
	fmt.Fprintf(&b, "  Length:     extracted=%d reference=%d\n",
		report.ExtractedLength, report.ReferenceLength)
	if len(report.MissingWords) > 0 {
		fmt.Fprintf(&b, "  Missing words (%d): %s\n",
			len(report.MissingWords), previewWords(report.MissingWords, wordPreview))
	}
	if len(report.ExtraWords) > 0 {
		fmt.Fprintf(&b, "  Extra words (%d): %s\n",
			len(report.ExtraWords), previewWords(report.ExtraWords, wordPreview))
	}
	fmt.Fprintf(&b, "  Details:    %s\n", report.ErrorDetails)
	return b.String()
}

func previewWords(words []string, limit int) string {
	if limit > 0 && len(words) > limit {
		return strings.Join(words[:limit], ", ") + ", ..."
	}
	return strings.Join(words, ", ")
}
