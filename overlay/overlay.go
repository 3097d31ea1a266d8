// Package overlay - Pure-Go annotation of analysis results onto images.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/makoyyylouie/tomato-ai/common"
	"github.com/makoyyylouie/tomato-ai/detect"
	"github.com/makoyyylouie/tomato-ai/labels"
)

var (
	// colorHealthy marks healthy tissue and ripe fruit.
	colorHealthy = color.RGBA{R: 76, G: 175, B: 80, A: 255}
	// colorDisease marks diseases and unripe fruit.
	colorDisease = color.RGBA{R: 244, G: 67, B: 54, A: 255}
)

const (
	boxOutlineWidth = 4
	labelYOffset    = 20
	bannerHeight    = 100
	bannerBorder    = 8
)

// boxColor picks the outline color for a detection label. Only healthy
// tissue and ripe fruit are green; unripe draws red like the diseases.
func boxColor(label string) color.RGBA {
	if labels.IsHealthy(label) || labels.IsRipe(label) {
		return colorHealthy
	}
	return colorDisease
}

// DrawDetections renders bounding boxes and labels onto a copy of an image.
//
// Boxes below the threshold are skipped. Each kept box gets a 4px outline
// colored by condition and a "label confidence%" caption above its top edge.
//
// Arguments:
//   - img: The source image. It is not modified.
//   - boxes: Detections to draw.
//   - threshold: Minimum confidence for a box to be drawn.
//
// Returns:
//   - *image.RGBA: The annotated copy.
func DrawDetections(img image.Image, boxes []common.BoundingBox, threshold float32) *image.RGBA {
	canvas := image.NewRGBA(img.Bounds())
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)

	for i := range boxes {
		box := &boxes[i]
		if box.Confidence < threshold {
			continue
		}
		c := boxColor(box.Label)
		drawRectOutline(canvas, box.ToRect(), c, boxOutlineWidth)

		caption := fmt.Sprintf("%s %.0f%%", labels.DisplayName(box.Label), box.Confidence*100)
		drawText(canvas, caption, int(box.X1), int(box.Y1)-labelYOffset, c)
	}
	return canvas
}

// DrawClassificationBanner renders a whole-image verdict onto a copy of an
// image: a translucent header with the status text, a border in the verdict
// color, and on tall images a footer listing the top predictions.
//
// Arguments:
//   - img: The source image. It is not modified.
//   - status: The verdict line shown in the header.
//   - healthy: Selects the green or red accent color.
//   - top: Predictions listed in the footer, best first.
//
// Returns:
//   - *image.RGBA: The annotated copy.
func DrawClassificationBanner(img image.Image, status string, healthy bool, top []detect.Prediction) *image.RGBA {
	canvas := image.NewRGBA(img.Bounds())
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)

	accent := colorDisease
	if healthy {
		accent = colorHealthy
	}
	bounds := canvas.Bounds()

	// Translucent header strip.
	header := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+bannerHeight)
	tint := color.RGBA{R: accent.R, G: accent.G, B: accent.B, A: 200}
	draw.Draw(canvas, header, &image.Uniform{C: tint}, image.Point{}, draw.Over)

	drawTextCentered(canvas, status, bounds.Min.Y+bannerHeight/2, color.White)
	drawRectOutline(canvas, bounds, accent, bannerBorder)

	// Footer with the prediction breakdown, only when there is room for it.
	if bounds.Dy() > 400 && len(top) > 0 {
		if len(top) > 3 {
			top = top[:3]
		}
		footerTop := bounds.Max.Y - (len(top)+1)*labelYOffset
		footer := image.Rect(bounds.Min.X, footerTop, bounds.Max.X, bounds.Max.Y)
		draw.Draw(canvas, footer, &image.Uniform{C: color.RGBA{A: 180}}, image.Point{}, draw.Over)
		for i, p := range top {
			line := fmt.Sprintf("%s: %.1f%%", labels.DisplayName(p.Label), p.Confidence*100)
			drawText(canvas, line, bounds.Min.X+bannerBorder+4, footerTop+(i+1)*labelYOffset, color.White)
		}
	}
	return canvas
}

// drawRectOutline draws a rectangle outline of the given width, clipped to
// the canvas.
func drawRectOutline(canvas *image.RGBA, rect image.Rectangle, c color.RGBA, width int) {
	rect = rect.Intersect(canvas.Bounds())
	if rect.Empty() {
		return
	}
	top := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+width)
	bottom := image.Rect(rect.Min.X, rect.Max.Y-width, rect.Max.X, rect.Max.Y)
	left := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+width, rect.Max.Y)
	right := image.Rect(rect.Max.X-width, rect.Min.Y, rect.Max.X, rect.Max.Y)
	src := &image.Uniform{C: c}
	for _, edge := range []image.Rectangle{top, bottom, left, right} {
		draw.Draw(canvas, edge.Intersect(canvas.Bounds()), src, image.Point{}, draw.Src)
	}
}

// drawText renders a single line at (x, y) in the fixed 7x13 face.
func drawText(canvas *image.RGBA, text string, x, y int, c color.Color) {
	if y < canvas.Bounds().Min.Y+basicfont.Face7x13.Height {
		y = canvas.Bounds().Min.Y + basicfont.Face7x13.Height
	}
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// drawTextCentered renders a line horizontally centered at the given baseline.
func drawTextCentered(canvas *image.RGBA, text string, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(text).Ceil()
	x := canvas.Bounds().Min.X + (canvas.Bounds().Dx()-width)/2
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
