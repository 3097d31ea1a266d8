package pipeline

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/makoyyylouie/tomato-ai/common"
	"github.com/makoyyylouie/tomato-ai/detect"
	"github.com/makoyyylouie/tomato-ai/images"
)

// mockDetector is a mock implementation of the detect.Detector interface.
type mockDetector struct {
	mock.Mock
	name   string
	source common.Source
}

func (m *mockDetector) Detect(ctx context.Context, img image.Image, threshold float32) ([]common.BoundingBox, error) {
	args := m.Called(ctx, img, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]common.BoundingBox), args.Error(1)
}

func (m *mockDetector) Name() string          { return m.name }
func (m *mockDetector) Source() common.Source { return m.source }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 120, G: 40, B: 30, A: 255})
		}
	}
	data, err := images.EncodeJPEG(img)
	require.NoError(t, err)
	return data
}

func box(label string, conf float32, source common.Source) common.BoundingBox {
	return common.BoundingBox{
		Label: label, Confidence: conf, Source: source,
		X1: 4, Y1: 4, X2: 40, Y2: 40,
	}
}

func TestAnalyzeAutoMergesBothModels(t *testing.T) {
	fruit := &mockDetector{name: "fruit_expert", source: common.SourceFruit}
	leaf := &mockDetector{name: "leaf_expert", source: common.SourceLeaf}

	fruit.On("Detect", mock.Anything, mock.Anything, detect.ThresholdDefault).
		Return([]common.BoundingBox{
			box("ripe", 0.91, common.SourceFruit),
			box("unripe", 0.40, common.SourceFruit),
		}, nil)
	leaf.On("Detect", mock.Anything, mock.Anything, detect.ThresholdDefault).
		Return([]common.BoundingBox{
			box("early-blight", 0.62, common.SourceLeaf),
		}, nil)

	o := New(fruit, leaf, nil, testLogger())
	result, err := o.Analyze(context.Background(), testJPEG(t), ModeAuto, detect.ThresholdDefault)
	require.NoError(t, err)

	assert.True(t, result.Detected)
	assert.Equal(t, HistoryModeBoth, result.Mode)
	assert.Equal(t, StatusUnhealthy, result.HealthStatus)
	assert.Equal(t, "Ripe", result.Ripeness)
	require.Len(t, result.Diseases, 1)
	assert.Equal(t, "early-blight", result.Diseases[0].Name)
	assert.Equal(t, "early_blight", result.Diseases[0].NormalizedName)
	// Once a disease is present the reported confidence tracks the diseases,
	// not the stronger ripeness detection.
	assert.InDelta(t, 0.62, result.MaxConfidence, 1e-6)
	assert.NotNil(t, result.Annotated)

	fruit.AssertExpectations(t)
	leaf.AssertExpectations(t)
}

func TestAnalyzeAutoHealthy(t *testing.T) {
	fruit := &mockDetector{name: "fruit_expert", source: common.SourceFruit}
	leaf := &mockDetector{name: "leaf_expert", source: common.SourceLeaf}

	fruit.On("Detect", mock.Anything, mock.Anything, mock.Anything).
		Return([]common.BoundingBox{box("ripe", 0.88, common.SourceFruit)}, nil)
	leaf.On("Detect", mock.Anything, mock.Anything, mock.Anything).
		Return([]common.BoundingBox{}, nil)

	o := New(fruit, leaf, nil, testLogger())
	result, err := o.Analyze(context.Background(), testJPEG(t), ModeAuto, detect.ThresholdDefault)
	require.NoError(t, err)

	assert.Equal(t, StatusHealthy, result.HealthStatus)
	assert.Equal(t, HistoryModeFruit, result.Mode)
	assert.Empty(t, result.Diseases)
	assert.InDelta(t, 0.88, result.MaxConfidence, 1e-6)
}

func TestAnalyzeAutoNothingDetected(t *testing.T) {
	fruit := &mockDetector{name: "fruit_expert", source: common.SourceFruit}
	leaf := &mockDetector{name: "leaf_expert", source: common.SourceLeaf}

	fruit.On("Detect", mock.Anything, mock.Anything, mock.Anything).Return([]common.BoundingBox{}, nil)
	leaf.On("Detect", mock.Anything, mock.Anything, mock.Anything).Return([]common.BoundingBox{}, nil)

	o := New(fruit, leaf, nil, testLogger())
	result, err := o.Analyze(context.Background(), testJPEG(t), ModeAuto, detect.ThresholdDefault)
	require.NoError(t, err)

	assert.False(t, result.Detected)
	assert.Equal(t, RipenessUnknown, result.Ripeness)
	assert.Nil(t, result.Annotated)
}

// mockClassifier is a mock implementation of the detect.Classifier interface.
type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, img image.Image) ([]detect.Prediction, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]detect.Prediction), args.Error(1)
}

func (m *mockClassifier) Name() string { return "gatekeeper" }

func TestAnalyzeNothingDetectedWithGatekeeperBanner(t *testing.T) {
	fruit := &mockDetector{name: "fruit_expert", source: common.SourceFruit}
	leaf := &mockDetector{name: "leaf_expert", source: common.SourceLeaf}
	gate := &mockClassifier{}

	fruit.On("Detect", mock.Anything, mock.Anything, mock.Anything).Return([]common.BoundingBox{}, nil)
	leaf.On("Detect", mock.Anything, mock.Anything, mock.Anything).Return([]common.BoundingBox{}, nil)
	gate.On("Classify", mock.Anything, mock.Anything).Return([]detect.Prediction{
		{Label: "invalid", Confidence: 0.97},
		{Label: "leaf", Confidence: 0.02},
	}, nil)

	o := New(fruit, leaf, gate, testLogger())
	result, err := o.Analyze(context.Background(), testJPEG(t), ModeAuto, detect.ThresholdDefault)
	require.NoError(t, err)

	assert.False(t, result.Detected)
	require.Len(t, result.Gatekeeper, 2)
	// The gatekeeper verdict is rendered as a banner in place of boxes.
	assert.NotNil(t, result.Annotated)
}

func TestAnalyzeAutoDetectorFailureDegrades(t *testing.T) {
	fruit := &mockDetector{name: "fruit_expert", source: common.SourceFruit}
	leaf := &mockDetector{name: "leaf_expert", source: common.SourceLeaf}

	fruit.On("Detect", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)
	leaf.On("Detect", mock.Anything, mock.Anything, mock.Anything).
		Return([]common.BoundingBox{box("late-blight", 0.7, common.SourceLeaf)}, nil)

	o := New(fruit, leaf, nil, testLogger())
	result, err := o.Analyze(context.Background(), testJPEG(t), ModeAuto, detect.ThresholdDefault)
	require.NoError(t, err)

	assert.True(t, result.Detected)
	assert.Equal(t, HistoryModeLeaf, result.Mode)
	assert.Equal(t, StatusUnhealthy, result.HealthStatus)
	require.Len(t, result.Diseases, 1)
}

func TestAnalyzeManualMode(t *testing.T) {
	leaf := &mockDetector{name: "leaf_expert", source: common.SourceLeaf}
	leaf.On("Detect", mock.Anything, mock.Anything, mock.Anything).
		Return([]common.BoundingBox{box("healthy", 0.95, common.SourceLeaf)}, nil)

	o := New(nil, leaf, nil, testLogger())
	result, err := o.Analyze(context.Background(), testJPEG(t), ModeLeaf, detect.ThresholdDefault)
	require.NoError(t, err)

	assert.Equal(t, string(ModeLeaf), result.Mode)
	assert.Equal(t, StatusHealthy, result.HealthStatus)
	assert.Equal(t, RipenessUnknown, result.Ripeness)
}

func TestAnalyzeManualModeModelMissing(t *testing.T) {
	o := New(nil, nil, nil, testLogger())
	_, err := o.Analyze(context.Background(), testJPEG(t), ModeFruit, detect.ThresholdDefault)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestAnalyzeRejectsGarbageImage(t *testing.T) {
	o := New(nil, nil, nil, testLogger())
	_, err := o.Analyze(context.Background(), []byte("not an image"), ModeAuto, detect.ThresholdDefault)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load image")
}

func TestAnalyzeUnknownMode(t *testing.T) {
	o := New(nil, nil, nil, testLogger())
	_, err := o.Analyze(context.Background(), testJPEG(t), Mode("Sideways"), detect.ThresholdDefault)
	require.Error(t, err)
}
