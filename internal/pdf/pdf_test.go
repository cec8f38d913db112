package pdf

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "empty selects all", input: "", want: nil},
		{name: "single page", input: "3", want: []int{3}},
		{name: "simple range", input: "1-4", want: []int{1, 2, 3, 4}},
		{name: "list", input: "1,3,5", want: []int{1, 3, 5}},
		{name: "mixed", input: "1,3,5-7", want: []int{1, 3, 5, 6, 7}},
		{name: "whitespace tolerated", input: " 2 , 4 ", want: []int{2, 4}},
		{name: "duplicates collapse", input: "2,2,1-3", want: []int{1, 2, 3}},
		{name: "descending range", input: "5-2", wantErr: true},
		{name: "zero page", input: "0", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "trailing comma", input: "1,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageRange(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		page     int
		wantErr  bool
	}{
		{filename: "page_1_image_1.png", page: 1},
		{filename: "page_12_image_3.jpg", page: 12},
		{filename: "cover.png", wantErr: true},
		{filename: "page_", wantErr: true},
		{filename: "page_x_image_1.png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			page, err := parsePageFromFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.page, page)
		})
	}
}

func TestValidateFile(t *testing.T) {
	tmpDir := t.TempDir()

	pdfPath := filepath.Join(tmpDir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o600))
	assert.NoError(t, ValidateFile(pdfPath))

	upperPath := filepath.Join(tmpDir, "DOC.PDF")
	require.NoError(t, os.WriteFile(upperPath, []byte("%PDF-1.4"), 0o600))
	assert.NoError(t, ValidateFile(upperPath))

	txtPath := filepath.Join(tmpDir, "doc.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("hello"), 0o600))
	assert.ErrorIs(t, ValidateFile(txtPath), ErrNotPDF)

	assert.Error(t, ValidateFile(filepath.Join(tmpDir, "missing.pdf")))
}

func TestPages(t *testing.T) {
	images := map[int][]image.Image{
		3: {nil},
		1: {nil},
		2: {nil, nil},
	}
	assert.Equal(t, []int{1, 2, 3}, Pages(images))
	assert.Empty(t, Pages(nil))
}

func TestCollectExtractedImages_SkipsUnrelatedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "page_1_image_1.png"), []byte("not a png"), 0o600))

	result, err := collectExtractedImages(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, result)
}
