package common

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxIntersection(t *testing.T) {
	a := &BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := &BoundingBox{X1: 5, Y1: 5, X2: 15, Y2: 15}

	assert.InDelta(t, 25.0, a.Intersection(b), 1e-6)
	assert.InDelta(t, 25.0, b.Intersection(a), 1e-6)
}

func TestBoundingBoxNoOverlap(t *testing.T) {
	a := &BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := &BoundingBox{X1: 20, Y1: 20, X2: 30, Y2: 30}

	assert.Equal(t, float32(0), a.Intersection(b))
	assert.Equal(t, float32(0), a.IoU(b))
}

func TestBoundingBoxUnion(t *testing.T) {
	a := &BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := &BoundingBox{X1: 5, Y1: 5, X2: 15, Y2: 15}

	// 100 + 100 - 25
	assert.InDelta(t, 175.0, a.Union(b), 1e-6)
}

func TestBoundingBoxIoU(t *testing.T) {
	a := &BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}
	b := &BoundingBox{X1: 5, Y1: 5, X2: 15, Y2: 15}

	assert.InDelta(t, 25.0/175.0, a.IoU(b), 1e-6)

	// Identical boxes overlap fully.
	assert.InDelta(t, 1.0, a.IoU(a), 1e-6)
}

func TestBoundingBoxToRect(t *testing.T) {
	b := &BoundingBox{X1: 1.9, Y1: 2.2, X2: 10.7, Y2: 20.1}
	assert.Equal(t, image.Rect(1, 2, 10, 20), b.ToRect())
}

func TestBoundingBoxString(t *testing.T) {
	b := &BoundingBox{Label: "ripe", Confidence: 0.5, X1: 1, Y1: 2, X2: 3, Y2: 4}
	assert.Contains(t, b.String(), "ripe")
	assert.Contains(t, b.String(), "(1.00, 2.00)")
}
