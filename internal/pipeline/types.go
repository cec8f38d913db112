package pipeline

import "github.com/qalam-ocr/qalam/internal/accuracy"

// ImageResult is the recognition output for a single image.
type ImageResult struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Words      int     `json:"words"`

	// Accuracy is present when a reference text was supplied.
	Accuracy *accuracy.Report `json:"accuracy,omitempty"`

	Processing struct {
		PreprocessNs int64 `json:"preprocess_ns"`
		RecognizeNs  int64 `json:"recognize_ns"`
		TotalNs      int64 `json:"total_ns"`
	} `json:"processing"`
}

// PDFResult is the per-document OCR output.
type PDFResult struct {
	Filename   string          `json:"filename"`
	TotalPages int             `json:"total_pages"`
	Pages      []PDFPageResult `json:"pages"`
	Processing struct {
		ExtractionNs int64 `json:"extraction_ns"`
		TotalNs      int64 `json:"total_ns"`
	} `json:"processing"`
}

// PDFPageResult is the OCR output for a single PDF page. Text joins the
// page's image texts in extraction order; when a reference text is supplied
// each page is scored independently, mirroring page-by-page review.
type PDFPageResult struct {
	PageNumber int              `json:"page_number"`
	Images     []ImageResult    `json:"images"`
	Text       string           `json:"text"`
	Accuracy   *accuracy.Report `json:"accuracy,omitempty"`
}
