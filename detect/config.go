package detect

// ModelConfig describes one ONNX model: where it lives, what it emits, and
// the input geometry it expects.
type ModelConfig struct {
	// Path is the ONNX model file location.
	Path string
	// Classes are the class names in model output order.
	Classes []string
	// InputSize is the square input resolution the model expects.
	InputSize int
	// MaxDetections is the anchor count of the detection output. Zero for
	// classification models, which emit one score per class instead.
	MaxDetections int
}

// DefaultInputSize is the input resolution shared by all shipped models.
const DefaultInputSize = 640

// yoloAnchorCount is the anchor count of a YOLOv8 head at 640x640.
const yoloAnchorCount = 8400

// FruitModelConfig returns the configuration of the fruit ripeness and
// disease model.
func FruitModelConfig(path string) ModelConfig {
	return ModelConfig{
		Path: path,
		Classes: []string{
			"ripe",
			"unripe",
			"tomato-healthy",
			"tomato-rotation",
			"blossom-end-rot",
			"yellow-leaf-curl-virus",
		},
		InputSize:     DefaultInputSize,
		MaxDetections: yoloAnchorCount,
	}
}

// LeafModelConfig returns the configuration of the leaf disease model.
func LeafModelConfig(path string) ModelConfig {
	return ModelConfig{
		Path: path,
		Classes: []string{
			"healthy",
			"early-blight",
			"late-blight",
			"septoria-leaf-spot",
			"bacterial-spot",
			"target-spot-leaf",
			"tomato-mosaic-virus",
			"yellow-leaf-curl-virus",
			"spider-mites-two-spotted",
		},
		InputSize:     DefaultInputSize,
		MaxDetections: yoloAnchorCount,
	}
}

// GatekeeperModelConfig returns the configuration of the image-content
// classifier that routes uploads to the right detector.
func GatekeeperModelConfig(path string) ModelConfig {
	return ModelConfig{
		Path: path,
		Classes: []string{
			"fruit",
			"leaf",
			"invalid",
		},
		InputSize: DefaultInputSize,
	}
}
