package server

import (
	"image"
	"math"

	"github.com/desertthunder/moodtune/internal/models"
)

// luminanceBands maps fifths of the average luminance, darkest first, to an emotion label.
var luminanceBands = []string{"angry", "sad", "neutral", "surprise", "happy"}

// DetectEmotion is a deterministic stand-in for a real classifier: it labels a frame by its
// average luminance. Confidence runs from 0.70 at the bottom of a band to 0.95 at the top.
func DetectEmotion(img image.Image) models.CaptureResult {
	lum := averageLuminance(img)

	pos := lum * float64(len(luminanceBands))
	band := min(int(pos), len(luminanceBands)-1)
	frac := pos - float64(band)

	confidence := math.Round((0.70+0.25*frac)*100) / 100
	return models.CaptureResult{Emotion: luminanceBands[band], Confidence: confidence}
}

// averageLuminance returns the mean Rec. 601 luma of img in [0, 1], sampling at most 64x64 points.
func averageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}

	stepX := max(1, bounds.Dx()/64)
	stepY := max(1, bounds.Dy()/64)

	var sum float64
	var n int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			sum += (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 0xffff
			n++
		}
	}
	return sum / float64(n)
}
