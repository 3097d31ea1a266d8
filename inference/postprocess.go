package inference

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/makoyyylouie/tomato-ai/common"
)

// DecodeDetections converts a raw YOLOv8 output tensor into bounding boxes in
// original image coordinates.
//
// The output layout is (4+C, N): four box rows (cx, cy, w, h) in model input
// pixels followed by one score row per class, N candidate anchors per row.
//
// Arguments:
//   - data: The flattened output tensor data.
//   - classes: Class names in model output order.
//   - origWidth: Width of the original image in pixels.
//   - origHeight: Height of the original image in pixels.
//   - inputSize: The square model input resolution.
//   - threshold: Minimum class score to keep a candidate.
//   - source: The detector source to stamp on each box.
//
// Returns:
//   - []common.BoundingBox: Candidate boxes above the threshold, unsorted and
//     not yet deduplicated.
func DecodeDetections(
	data []float32,
	classes []string,
	origWidth, origHeight, inputSize int,
	threshold float32,
	source common.Source,
) []common.BoundingBox {
	rows := 4 + len(classes)
	if len(data) < rows || len(data)%rows != 0 {
		return nil
	}
	anchors := len(data) / rows

	scaleX := float32(origWidth) / float32(inputSize)
	scaleY := float32(origHeight) / float32(inputSize)

	boxes := make([]common.BoundingBox, 0, 8)
	for i := 0; i < anchors; i++ {
		classID := 0
		score := float32(0)
		for c := range classes {
			s := data[(4+c)*anchors+i]
			if s > score {
				score = s
				classID = c
			}
		}
		if score < threshold {
			continue
		}

		cx := data[0*anchors+i]
		cy := data[1*anchors+i]
		w := data[2*anchors+i]
		h := data[3*anchors+i]

		boxes = append(boxes, common.BoundingBox{
			Label:      classes[classID],
			Confidence: score,
			Source:     source,
			X1:         clamp((cx-w/2)*scaleX, 0, float32(origWidth)),
			Y1:         clamp((cy-h/2)*scaleY, 0, float32(origHeight)),
			X2:         clamp((cx+w/2)*scaleX, 0, float32(origWidth)),
			Y2:         clamp((cy+h/2)*scaleY, 0, float32(origHeight)),
		})
	}
	return boxes
}

// NMS applies non-maximum suppression to a set of candidate boxes.
//
// Boxes are considered in descending confidence order; a box is kept only if
// its IoU with every already-kept box stays below the threshold.
//
// Arguments:
//   - boxes: Candidate boxes from DecodeDetections.
//   - iouThreshold: Maximum allowed overlap between kept boxes.
//
// Returns:
//   - []common.BoundingBox: The surviving boxes, highest confidence first.
func NMS(boxes []common.BoundingBox, iouThreshold float32) []common.BoundingBox {
	sort.Slice(boxes, func(i, j int) bool {
		return boxes[i].Confidence > boxes[j].Confidence
	})

	kept := make([]common.BoundingBox, 0, len(boxes))
	for _, candidate := range boxes {
		overlaps := false
		for i := range kept {
			if candidate.IoU(&kept[i]) > iouThreshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// Softmax converts raw classifier logits into a probability distribution.
// The maximum logit is subtracted first for numerical stability.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}

	probs := make([]float32, len(logits))
	var sum float32
	for i, l := range logits {
		probs[i] = math32.Exp(l - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
