// Package pipeline - Dual-model analysis orchestration.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/makoyyylouie/tomato-ai/common"
	"github.com/makoyyylouie/tomato-ai/detect"
	"github.com/makoyyylouie/tomato-ai/images"
	"github.com/makoyyylouie/tomato-ai/labels"
	"github.com/makoyyylouie/tomato-ai/overlay"
)

// Mode selects which models an analysis runs.
type Mode string

// Analysis modes as shown in the scanner UI.
const (
	ModeAuto  Mode = "Auto-Detect"
	ModeFruit Mode = "Tomato Fruit Only"
	ModeLeaf  Mode = "Tomato Leaf Only"
)

// Overall health verdicts.
const (
	StatusHealthy   = "Healthy"
	StatusUnhealthy = "Unhealthy"
)

// History mode strings recorded for auto-mode scans, depending on which
// detector produced results.
const (
	HistoryModeBoth  = "Fruit & Leaf"
	HistoryModeFruit = "Tomato Fruit"
	HistoryModeLeaf  = "Tomato Leaf"
)

// RipenessUnknown is recorded when no ripeness detection was made.
const RipenessUnknown = "N/A"

// ErrModelUnavailable is returned when a manual mode names a model that
// failed to load.
var ErrModelUnavailable = errors.New("model not loaded")

// Disease is one disease finding from either model.
type Disease struct {
	// Name is the raw model label.
	Name string
	// NormalizedName is the canonical lookup key for the knowledge base.
	NormalizedName string
	Confidence     float32
	Source         common.Source
}

// Result is the outcome of one analysis.
type Result struct {
	// Detected is false when no model found anything above threshold.
	Detected bool
	// Mode is the history mode string for this analysis.
	Mode string
	// HealthStatus is StatusHealthy or StatusUnhealthy.
	HealthStatus string
	// Ripeness is the display name of the strongest ripeness detection, or
	// RipenessUnknown.
	Ripeness string
	// Diseases lists every disease finding, fruit first.
	Diseases []Disease
	// MaxConfidence is the strongest disease confidence when diseases were
	// found, otherwise the strongest confidence over all detections.
	MaxConfidence float32
	// FruitDetections and LeafDetections are the raw per-model results.
	FruitDetections []common.BoundingBox
	LeafDetections  []common.BoundingBox
	// Gatekeeper holds the content classification when that model is loaded.
	Gatekeeper []detect.Prediction
	// Annotated is the result image with boxes drawn. When nothing was
	// detected it carries the gatekeeper banner if that model is loaded,
	// otherwise nil.
	Annotated image.Image
}

// Orchestrator runs the fruit and leaf experts and merges their findings.
// Either detector may be nil when its model failed to load.
type Orchestrator struct {
	fruit      detect.Detector
	leaf       detect.Detector
	gatekeeper detect.Classifier
	logger     *slog.Logger
}

// New creates an Orchestrator.
func New(fruit, leaf detect.Detector, gatekeeper detect.Classifier, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{fruit: fruit, leaf: leaf, gatekeeper: gatekeeper, logger: logger}
}

// Ready reports whether at least one detection model is loaded.
func (o *Orchestrator) Ready() bool {
	return o.fruit != nil || o.leaf != nil
}

// Analyze decodes an uploaded image and runs the selected analysis mode.
//
// In auto mode both experts run; a failing or missing expert contributes zero
// detections. In a manual mode the selected expert must be loaded.
//
// Arguments:
//   - ctx: Request context.
//   - data: Raw uploaded image bytes (JPEG, PNG, or WebP).
//   - mode: The analysis mode.
//   - threshold: Minimum detection confidence.
//
// Returns:
//   - *Result: The merged analysis outcome.
//   - error: A decode error or ErrModelUnavailable.
func (o *Orchestrator) Analyze(ctx context.Context, data []byte, mode Mode, threshold float32) (*Result, error) {
	img, _, err := images.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load image")
	}

	var fruitBoxes, leafBoxes []common.BoundingBox
	switch mode {
	case ModeAuto:
		fruitBoxes = o.run(ctx, o.fruit, img, threshold)
		leafBoxes = o.run(ctx, o.leaf, img, threshold)
	case ModeFruit:
		if o.fruit == nil {
			return nil, errors.Wrap(ErrModelUnavailable, "fruit model")
		}
		fruitBoxes = o.run(ctx, o.fruit, img, threshold)
	case ModeLeaf:
		if o.leaf == nil {
			return nil, errors.Wrap(ErrModelUnavailable, "leaf model")
		}
		leafBoxes = o.run(ctx, o.leaf, img, threshold)
	default:
		return nil, errors.Errorf("unknown analysis mode %q", mode)
	}

	result := &Result{
		Mode:            historyMode(mode, fruitBoxes, leafBoxes),
		Ripeness:        RipenessUnknown,
		FruitDetections: fruitBoxes,
		LeafDetections:  leafBoxes,
	}

	if o.gatekeeper != nil {
		preds, err := o.gatekeeper.Classify(ctx, img)
		if err != nil {
			o.logger.Warn("gatekeeper classification failed", "error", err)
		} else {
			result.Gatekeeper = preds
		}
	}

	if len(fruitBoxes)+len(leafBoxes) == 0 {
		result.HealthStatus = StatusHealthy
		// With nothing boxed, the gatekeeper's verdict is the only feedback
		// worth showing.
		if len(result.Gatekeeper) > 0 {
			top := result.Gatekeeper[0]
			status := fmt.Sprintf("%s (%.0f%%)", labels.DisplayName(top.Label), top.Confidence*100)
			result.Annotated = overlay.DrawClassificationBanner(img, status, top.Label != "invalid", result.Gatekeeper)
		}
		return result, nil
	}
	result.Detected = true

	var ripenessBest *common.BoundingBox
	for i := range fruitBoxes {
		box := &fruitBoxes[i]
		if box.Confidence > result.MaxConfidence {
			result.MaxConfidence = box.Confidence
		}
		switch labels.ClassifyFruit(box.Label) {
		case labels.KindRipeness:
			if ripenessBest == nil || box.Confidence > ripenessBest.Confidence {
				ripenessBest = box
			}
		case labels.KindDisease:
			result.Diseases = append(result.Diseases, diseaseFrom(box))
		}
	}
	for i := range leafBoxes {
		box := &leafBoxes[i]
		if box.Confidence > result.MaxConfidence {
			result.MaxConfidence = box.Confidence
		}
		if labels.ClassifyLeaf(box.Label) == labels.KindDisease {
			result.Diseases = append(result.Diseases, diseaseFrom(box))
		}
	}

	if ripenessBest != nil {
		result.Ripeness = labels.DisplayName(ripenessBest.Label)
	}

	result.HealthStatus = StatusHealthy
	if len(result.Diseases) > 0 {
		result.HealthStatus = StatusUnhealthy
		// Confidence reported to the user tracks the disease findings once
		// any exist.
		result.MaxConfidence = 0
		for _, d := range result.Diseases {
			if d.Confidence > result.MaxConfidence {
				result.MaxConfidence = d.Confidence
			}
		}
	}

	all := make([]common.BoundingBox, 0, len(fruitBoxes)+len(leafBoxes))
	all = append(all, fruitBoxes...)
	all = append(all, leafBoxes...)
	result.Annotated = overlay.DrawDetections(img, all, detect.ThresholdOverlayPipeline)

	return result, nil
}

// run executes one detector, degrading any failure to zero detections.
func (o *Orchestrator) run(ctx context.Context, d detect.Detector, img image.Image, threshold float32) []common.BoundingBox {
	if d == nil {
		return nil
	}
	boxes, err := d.Detect(ctx, img, threshold)
	if err != nil {
		o.logger.Warn("detector failed, continuing without its results",
			"detector", d.Name(), "error", err)
		return nil
	}
	return boxes
}

// historyMode derives the mode string recorded in scan history.
func historyMode(mode Mode, fruitBoxes, leafBoxes []common.BoundingBox) string {
	if mode != ModeAuto {
		return string(mode)
	}
	switch {
	case len(fruitBoxes) > 0 && len(leafBoxes) > 0:
		return HistoryModeBoth
	case len(leafBoxes) > 0:
		return HistoryModeLeaf
	default:
		return HistoryModeFruit
	}
}

func diseaseFrom(box *common.BoundingBox) Disease {
	return Disease{
		Name:           box.Label,
		NormalizedName: labels.Normalize(box.Label),
		Confidence:     box.Confidence,
		Source:         box.Source,
	}
}
