package pdf

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	_ "golang.org/x/image/tiff"
)

var (
	// ErrNotPDF indicates the input file does not look like a PDF.
	ErrNotPDF = errors.New("file is not a PDF")
	// ErrNoImages indicates the PDF contains no extractable page images.
	ErrNoImages = errors.New("no images found in PDF")
)

// ValidateFile checks that the path exists and carries a .pdf extension
// before any expensive processing starts.
func ValidateFile(filename string) error {
	if _, err := os.Stat(filename); err != nil {
		return fmt.Errorf("PDF file not found: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return fmt.Errorf("%w: %s", ErrNotPDF, filename)
	}
	return nil
}

// PageCount returns the number of pages in the PDF.
func PageCount(filename string) (int, error) {
	count, err := api.PageCountFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF page count: %w", err)
	}
	return count, nil
}

// ExtractPageImages extracts the images embedded in the PDF's pages, grouped
// by 1-based page number. Scanned documents carry one full-page image per
// page, which is the primary input for OCR.
func ExtractPageImages(filename string, pageRange string) (map[int][]image.Image, error) {
	pageNumbers, err := ParsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "qalam-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var pageStrings []string
	if len(pageNumbers) > 0 {
		pageStrings = make([]string, len(pageNumbers))
		for i, pageNum := range pageNumbers {
			pageStrings[i] = strconv.Itoa(pageNum)
		}
	}

	if err := api.ExtractImagesFile(filename, tempDir, pageStrings, nil); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	result, err := collectExtractedImages(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to process extracted images: %w", err)
	}
	if len(result) == 0 {
		return nil, ErrNoImages
	}
	return result, nil
}

// Pages returns the sorted page numbers present in an extraction result.
func Pages(images map[int][]image.Image) []int {
	pages := make([]int, 0, len(images))
	for p := range images {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// collectExtractedImages walks the extraction directory and groups decoded
// images by page number. pdfcpu names files page_<num>_image_<idx>.<ext>.
func collectExtractedImages(dir string) (map[int][]image.Image, error) {
	result := make(map[int][]image.Image)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		pageNum, err := parsePageFromFilename(info.Name())
		if err != nil {
			// Not a page image; skip.
			return nil
		}

		img, err := loadImageFile(path)
		if err != nil {
			// Undecodable entries are skipped rather than failing the
			// whole document.
			return nil
		}

		result[pageNum] = append(result[pageNum], img)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // G304: extraction temp dir paths
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	return img, err
}

// parsePageFromFilename extracts the page number from a pdfcpu-generated
// filename.
func parsePageFromFilename(filename string) (int, error) {
	if !strings.HasPrefix(filename, "page_") {
		return 0, errors.New("not a page file")
	}

	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return 0, errors.New("invalid filename format")
	}

	pageNum, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.New("invalid page number")
	}
	return pageNum, nil
}

// ParsePageRange parses a page range like "1-5", "3" or "1,3,5-7" into an
// ascending, de-duplicated page list. Empty input selects all pages.
func ParsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil
	}

	seen := make(map[int]struct{})
	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		for _, p := range tokenPages {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)
	return pages, nil
}

// parseRangeToken parses a single page ("3") or an inclusive range ("1-5").
func parseRangeToken(part string) ([]int, error) {
	if part == "" {
		return nil, errors.New("empty page token")
	}

	if start, end, ok := strings.Cut(part, "-"); ok {
		first, err := parsePageNumber(start)
		if err != nil {
			return nil, err
		}
		last, err := parsePageNumber(end)
		if err != nil {
			return nil, err
		}
		if last < first {
			return nil, fmt.Errorf("descending range: %s", part)
		}
		pages := make([]int, 0, last-first+1)
		for p := first; p <= last; p++ {
			pages = append(pages, p)
		}
		return pages, nil
	}

	page, err := parsePageNumber(part)
	if err != nil {
		return nil, err
	}
	return []int{page}, nil
}

func parsePageNumber(s string) (int, error) {
	page, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid page number: %s", s)
	}
	if page < 1 {
		return 0, fmt.Errorf("page numbers start at 1, got %d", page)
	}
	return page, nil
}
