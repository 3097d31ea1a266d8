// Package detect - Model adapters for tomato fruit and leaf analysis.
package detect

import (
	"context"
	"image"

	"github.com/makoyyylouie/tomato-ai/common"
)

// Confidence thresholds used across the analysis paths.
const (
	// ThresholdDefault filters detections in the interactive analysis path.
	ThresholdDefault float32 = 0.25
	// ThresholdStrict filters detections in the batch analysis path.
	ThresholdStrict float32 = 0.5
	// ThresholdOverlayGeneric filters boxes drawn by the generic overlay.
	ThresholdOverlayGeneric float32 = 0.4
	// ThresholdOverlayPipeline filters boxes drawn on analysis results.
	ThresholdOverlayPipeline float32 = 0.25
	// NMSThreshold is the IoU above which overlapping boxes are suppressed.
	NMSThreshold float32 = 0.45
)

// Detector locates and labels objects in an image.
type Detector interface {
	// Detect returns all detections with confidence at or above threshold.
	Detect(ctx context.Context, img image.Image, threshold float32) ([]common.BoundingBox, error)
	// Name returns a human-readable detector name for logging.
	Name() string
	// Source identifies which model family produced the detections.
	Source() common.Source
}

// Prediction is a single whole-image classification result.
type Prediction struct {
	Label      string
	Confidence float32
}

// Classifier assigns a whole image to one of a fixed set of classes.
type Classifier interface {
	// Classify returns class probabilities sorted by descending confidence.
	Classify(ctx context.Context, img image.Image) ([]Prediction, error)
	// Name returns a human-readable classifier name for logging.
	Name() string
}
