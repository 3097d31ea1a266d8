package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makoyyylouie/tomato-ai/common"
	"github.com/makoyyylouie/tomato-ai/detect"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDrawDetectionsLeavesSourceUntouched(t *testing.T) {
	src := solidImage(200, 200, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	boxes := []common.BoundingBox{
		{Label: "early-blight", Confidence: 0.8, X1: 50, Y1: 50, X2: 150, Y2: 150},
	}

	out := DrawDetections(src, boxes, 0.25)
	require.NotNil(t, out)

	// Outline pixel changed on the copy, not on the source.
	assert.Equal(t, colorDisease, out.RGBAAt(50, 50))
	assert.Equal(t, color.RGBA{R: 10, G: 10, B: 10, A: 255}, src.RGBAAt(50, 50))
}

func TestDrawDetectionsThreshold(t *testing.T) {
	src := solidImage(200, 200, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	boxes := []common.BoundingBox{
		{Label: "ripe", Confidence: 0.3, X1: 50, Y1: 50, X2: 150, Y2: 150},
	}

	out := DrawDetections(src, boxes, 0.4)
	assert.Equal(t, src.RGBAAt(50, 50), out.RGBAAt(50, 50))
}

func TestBoxColorByCondition(t *testing.T) {
	assert.Equal(t, colorHealthy, boxColor("ripe"))
	assert.Equal(t, colorHealthy, boxColor("tomato-healthy"))
	assert.Equal(t, colorHealthy, boxColor("healthy leaf"))
	// Unripe fruit gets the warning color along with the diseases.
	assert.Equal(t, colorDisease, boxColor("unripe"))
	assert.Equal(t, colorDisease, boxColor("early-blight"))
	assert.Equal(t, colorDisease, boxColor("blossom-end-rot"))
}

func TestDrawDetectionsUnripeDrawsRed(t *testing.T) {
	src := solidImage(200, 200, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	boxes := []common.BoundingBox{
		{Label: "unripe", Confidence: 0.8, X1: 50, Y1: 50, X2: 150, Y2: 150},
	}

	out := DrawDetections(src, boxes, 0.25)
	assert.Equal(t, colorDisease, out.RGBAAt(50, 50))
}

func TestDrawClassificationBanner(t *testing.T) {
	src := solidImage(300, 500, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	top := []detect.Prediction{
		{Label: "fruit", Confidence: 0.92},
		{Label: "leaf", Confidence: 0.06},
		{Label: "invalid", Confidence: 0.02},
	}

	out := DrawClassificationBanner(src, "Tomato Fruit Detected", true, top)
	require.NotNil(t, out)

	// Border pixel carries the healthy accent.
	assert.Equal(t, colorHealthy, out.RGBAAt(0, 250))
	// Header strip is tinted, so it no longer matches the source.
	assert.NotEqual(t, src.RGBAAt(150, 50), out.RGBAAt(150, 50))
}

func TestDrawClassificationBannerSmallImageSkipsFooter(t *testing.T) {
	src := solidImage(300, 300, color.RGBA{R: 10, G: 10, B: 10, A: 255})

	out := DrawClassificationBanner(src, "Invalid Image", false, []detect.Prediction{
		{Label: "invalid", Confidence: 0.9},
	})

	// No footer panel on short images; pixel just above the bottom border is
	// unchanged.
	y := 300 - bannerBorder - 1
	assert.Equal(t, src.RGBAAt(150, y), out.RGBAAt(150, y))
}
