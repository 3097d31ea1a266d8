// Package inference - ONNX Runtime session management and tensor plumbing.
package inference

import (
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortOnce    sync.Once
	ortInitErr error
)

// GetSharedLibPath returns the path of the ONNX Runtime shared library.
// The ONNXRUNTIME_SHARED_LIBRARY_PATH environment variable overrides the
// platform default.
func GetSharedLibPath() string {
	if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
		return p
	}
	switch runtime.GOOS {
	case "darwin":
		return "/usr/local/lib/libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "/usr/local/lib/libonnxruntime.so"
	}
}

// initRuntime initializes the shared ONNX Runtime environment exactly once.
func initRuntime() error {
	ortOnce.Do(func() {
		libPath := GetSharedLibPath()
		if _, err := os.Stat(libPath); os.IsNotExist(err) {
			ortInitErr = errors.Errorf("ONNX Runtime library not found at %s", libPath)
			return
		}
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			ortInitErr = errors.Wrap(err, "error initializing ORT environment")
		}
	})
	return ortInitErr
}

// Session represents a model session from the onnxruntime.
type Session struct {
	Session *ort.AdvancedSession
	Input   *ort.Tensor[float32]
	Output  *ort.Tensor[float32]
	// InputSize is the square model input resolution (e.g. 640).
	InputSize int
}

// NewSession loads an ONNX model into an advanced session with fixed-shape
// input and output tensors.
//
// Arguments:
//   - modelPath: Path to the ONNX model file.
//   - inputSize: Square input resolution the model expects.
//   - outputShape: Shape of the model's single output tensor.
//
// Returns:
//   - *Session: The model session.
//   - error: An error if the session creation fails.
func NewSession(modelPath string, inputSize int, outputShape []int64) (*Session, error) {
	if err := initRuntime(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, errors.Errorf("model file not found: %s", modelPath)
	}

	inputShape := ort.NewShape(1, 3, int64(inputSize), int64(inputSize))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(outputShape...))
	if err != nil {
		inputTensor.Destroy() // Clean up input tensor if output tensor creation fails
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	// Sets the number of threads used to parallelize execution within onnxruntime graph nodes. A value of 0 uses the default number of threads.
	options.SetIntraOpNumThreads(4)
	// Sets the number of threads used to parallelize execution across separate onnxruntime graph nodes. A value of 0 uses the default number of threads.
	options.SetInterOpNumThreads(2)
	// Sets the optimization level to apply when loading a graph.
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	return &Session{
		Session:   session,
		Input:     inputTensor,
		Output:    outputTensor,
		InputSize: inputSize,
	}, nil
}

// Run executes one inference pass over the currently prepared input tensor.
func (s *Session) Run() error {
	return s.Session.Run()
}

// Close releases the resources associated with the Session.
func (s *Session) Close() {
	if s.Input != nil {
		s.Input.Destroy()
		s.Input = nil
	}
	if s.Output != nil {
		s.Output.Destroy()
		s.Output = nil
	}
	if s.Session != nil {
		s.Session.Destroy()
		s.Session = nil
	}
}
