// Package common - Shared detection primitives.
package common

import (
	"fmt"
	"image"
)

// Source identifies which expert model produced a detection.
type Source string

const (
	// SourceFruit marks detections from the fruit ripeness/disease model.
	SourceFruit Source = "fruit"
	// SourceLeaf marks detections from the leaf disease model.
	SourceLeaf Source = "leaf"
)

// BoundingBox represents a single detection with its label, confidence,
// originating model, and pixel coordinates in the source image.
type BoundingBox struct {
	Label          string
	Confidence     float32
	Source         Source
	X1, Y1, X2, Y2 float32
}

// String formats the detection for logs and debugging output.
//
// Returns:
// - A formatted string containing label, confidence, and coordinates.
func (b *BoundingBox) String() string {
	return fmt.Sprintf("Object %s (confidence %f): (%.2f, %.2f), (%.2f, %.2f)",
		b.Label, b.Confidence, b.X1, b.Y1, b.X2, b.Y2)
}

// ToRect converts the bounding box to an image.Rectangle.
//
// This won't be entirely precise due to conversion to the integral rectangles
// from the image.Image library, but it is only used for drawing and for
// estimating which boxes overlap too much, so some imprecision is OK.
//
// Returns:
// - An image.Rectangle with canonicalized coordinates.
func (b *BoundingBox) ToRect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)).Canon()
}

// Intersection calculates the intersection area between two bounding boxes.
//
// Arguments:
// - other: The other bounding box to calculate intersection with.
//
// Returns:
// - The area of intersection in pixels as float32.
func (b *BoundingBox) Intersection(other *BoundingBox) float32 {
	r1 := b.ToRect()
	r2 := other.ToRect()
	intersected := r1.Intersect(r2).Canon().Size()
	return float32(intersected.X * intersected.Y)
}

// Union calculates the union area between two bounding boxes.
//
// Arguments:
// - other: The other bounding box to calculate union with.
//
// Returns:
// - The area of union in pixels as float32.
func (b *BoundingBox) Union(other *BoundingBox) float32 {
	intersectArea := b.Intersection(other)
	r1 := b.ToRect()
	r2 := other.ToRect()
	size1 := r1.Size()
	size2 := r2.Size()
	totalArea := float32(size1.X*size1.Y + size2.X*size2.Y)
	return totalArea - intersectArea
}

// IoU calculates the Intersection over Union between two bounding boxes.
//
// This metric is used for Non-Maximum Suppression (NMS) to remove duplicate
// detections.
//
// Arguments:
// - other: The other bounding box to calculate IoU with.
//
// Returns:
// - The IoU value between 0 and 1.
func (b *BoundingBox) IoU(other *BoundingBox) float32 {
	union := b.Union(other)
	if union == 0 {
		return 0
	}
	return b.Intersection(other) / union
}
