package detect

import (
	"context"
	"image"
	"log/slog"
	"sort"
	"sync"

	"github.com/makoyyylouie/tomato-ai/common"
	"github.com/makoyyylouie/tomato-ai/inference"
)

// ONNXDetector runs a YOLOv8 detection model through ONNX Runtime.
//
// The underlying session owns fixed input and output tensors, so concurrent
// Detect calls are serialized with a mutex.
type ONNXDetector struct {
	session *inference.Session
	config  ModelConfig
	source  common.Source
	name    string
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewONNXDetector loads a detection model and prepares its session.
//
// Arguments:
//   - name: Human-readable model name for logging.
//   - config: The model configuration.
//   - source: The source stamped on every detection.
//   - logger: Structured logger.
//
// Returns:
//   - *ONNXDetector: The ready detector.
//   - error: An error if the model cannot be loaded.
func NewONNXDetector(name string, config ModelConfig, source common.Source, logger *slog.Logger) (*ONNXDetector, error) {
	outputShape := []int64{1, int64(4 + len(config.Classes)), int64(config.MaxDetections)}
	session, err := inference.NewSession(config.Path, config.InputSize, outputShape)
	if err != nil {
		return nil, err
	}
	logger.Info("detection model loaded",
		"name", name,
		"path", config.Path,
		"classes", len(config.Classes))
	return &ONNXDetector{
		session: session,
		config:  config,
		source:  source,
		name:    name,
		logger:  logger,
	}, nil
}

// Detect implements the Detector interface.
func (d *ONNXDetector) Detect(ctx context.Context, img image.Image, threshold float32) ([]common.BoundingBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	inference.PrepareInput(img, d.session.Input, d.config.InputSize)
	if err := d.session.Run(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	candidates := inference.DecodeDetections(
		d.session.Output.GetData(),
		d.config.Classes,
		bounds.Dx(), bounds.Dy(),
		d.config.InputSize,
		threshold,
		d.source,
	)
	return inference.NMS(candidates, NMSThreshold), nil
}

// Name implements the Detector interface.
func (d *ONNXDetector) Name() string { return d.name }

// Source implements the Detector interface.
func (d *ONNXDetector) Source() common.Source { return d.source }

// Close releases the model session.
func (d *ONNXDetector) Close() {
	d.session.Close()
}

// ONNXClassifier runs a whole-image classification model through ONNX Runtime.
type ONNXClassifier struct {
	session *inference.Session
	config  ModelConfig
	name    string
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewONNXClassifier loads a classification model and prepares its session.
func NewONNXClassifier(name string, config ModelConfig, logger *slog.Logger) (*ONNXClassifier, error) {
	outputShape := []int64{1, int64(len(config.Classes))}
	session, err := inference.NewSession(config.Path, config.InputSize, outputShape)
	if err != nil {
		return nil, err
	}
	logger.Info("classification model loaded",
		"name", name,
		"path", config.Path,
		"classes", len(config.Classes))
	return &ONNXClassifier{
		session: session,
		config:  config,
		name:    name,
		logger:  logger,
	}, nil
}

// Classify implements the Classifier interface.
func (c *ONNXClassifier) Classify(ctx context.Context, img image.Image) ([]Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	inference.PrepareInput(img, c.session.Input, c.config.InputSize)
	if err := c.session.Run(); err != nil {
		return nil, err
	}

	probs := inference.Softmax(c.session.Output.GetData())
	predictions := make([]Prediction, len(probs))
	for i, p := range probs {
		predictions[i] = Prediction{Label: c.config.Classes[i], Confidence: p}
	}
	sort.Slice(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})
	return predictions, nil
}

// Name implements the Classifier interface.
func (c *ONNXClassifier) Name() string { return c.name }

// Close releases the model session.
func (c *ONNXClassifier) Close() {
	c.session.Close()
}
