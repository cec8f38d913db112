package preprocess

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Options controls image preparation before recognition.
type Options struct {
	// Grayscale converts the input to grayscale.
	Grayscale bool
	// Binarize applies Otsu global thresholding, producing a black and
	// white image. Implies a grayscale conversion.
	Binarize bool
}

// DefaultOptions returns the preparation applied by default for OCR input:
// grayscale plus Otsu binarization.
func DefaultOptions() Options {
	return Options{Grayscale: true, Binarize: true}
}

// Apply runs the configured preparation steps and returns the resulting
// image. With all options disabled the input is returned unchanged.
func Apply(img image.Image, opts Options) image.Image {
	if opts.Binarize {
		return BinarizeOtsu(img)
	}
	if opts.Grayscale {
		return Grayscale(img)
	}
	return img
}

// Grayscale converts an image to grayscale.
func Grayscale(img image.Image) *image.NRGBA {
	return imaging.Grayscale(img)
}

// BinarizeOtsu converts an image to a black and white image.Gray using a
// global threshold chosen by Otsu's method, the same binarization the
// classic scanned-document OCR path uses.
func BinarizeOtsu(img image.Image) *image.Gray {
	gray := toGray(img)
	threshold := otsuThreshold(gray)

	bounds := gray.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if gray.GrayAt(x, y).Y > threshold {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// otsuThreshold picks the threshold maximizing between-class variance over
// the gray histogram.
func otsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	var sum float64
	for i, count := range hist {
		sum += float64(i) * float64(count)
	}

	var (
		sumBackground    float64
		weightBackground int
		bestVariance     float64
		bestThreshold    uint8
	)
	for i, count := range hist {
		weightBackground += count
		if weightBackground == 0 {
			continue
		}
		weightForeground := total - weightBackground
		if weightForeground == 0 {
			break
		}

		sumBackground += float64(i) * float64(count)
		meanBackground := sumBackground / float64(weightBackground)
		meanForeground := (sum - sumBackground) / float64(weightForeground)

		diff := meanBackground - meanForeground
		variance := float64(weightBackground) * float64(weightForeground) * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			bestThreshold = uint8(i)
		}
	}
	return bestThreshold
}
