package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bimodalImage builds a gray image with a dark and a bright population.
func bimodalImage(dark, bright uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 5 {
				img.SetGray(x, y, color.Gray{Y: dark})
			} else {
				img.SetGray(x, y, color.Gray{Y: bright})
			}
		}
	}
	return img
}

func TestBinarizeOtsu_Bimodal(t *testing.T) {
	img := bimodalImage(40, 200)
	out := BinarizeOtsu(img)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			got := out.GrayAt(x, y).Y
			if x < 5 {
				assert.Equal(t, uint8(0), got, "dark pixel at (%d,%d)", x, y)
			} else {
				assert.Equal(t, uint8(255), got, "bright pixel at (%d,%d)", x, y)
			}
		}
	}
}

func TestBinarizeOtsu_UniformImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}

	out := BinarizeOtsu(img)
	require.Equal(t, img.Bounds(), out.Bounds())
	// A single-valued histogram has no between-class split; every pixel
	// must land on the same side.
	first := out.GrayAt(0, 0).Y
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, first, out.GrayAt(x, y).Y)
		}
	}
}

func TestBinarizeOtsu_ColorInput(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 6; x++ {
			if x < 3 {
				img.Set(x, y, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
			}
		}
	}

	out := BinarizeOtsu(img)
	assert.Equal(t, uint8(0), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), out.GrayAt(5, 1).Y)
}

func TestGrayscale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 200, G: 30, B: 90, A: 255})

	out := Grayscale(img)
	c := out.NRGBAAt(0, 0)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
}

func TestApply(t *testing.T) {
	img := bimodalImage(20, 220)

	t.Run("disabled returns input", func(t *testing.T) {
		out := Apply(img, Options{})
		assert.Equal(t, image.Image(img), out)
	})

	t.Run("grayscale only", func(t *testing.T) {
		out := Apply(img, Options{Grayscale: true})
		_, ok := out.(*image.NRGBA)
		assert.True(t, ok)
	})

	t.Run("binarize", func(t *testing.T) {
		out := Apply(img, DefaultOptions())
		gray, ok := out.(*image.Gray)
		require.True(t, ok)
		assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
		assert.Equal(t, uint8(255), gray.GrayAt(9, 0).Y)
	})
}
