// Live webcam preview: runs the fruit expert on each frame and draws the
// detections in an OpenCV window.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"gocv.io/x/gocv"

	"github.com/makoyyylouie/tomato-ai/common"
	"github.com/makoyyylouie/tomato-ai/detect"
	"github.com/makoyyylouie/tomato-ai/labels"
)

var (
	colorHealthy = color.RGBA{R: 76, G: 175, B: 80, A: 255}
	colorDisease = color.RGBA{R: 244, G: 67, B: 54, A: 255}
)

func main() {
	deviceID := flag.Int("device", 0, "webcam device id")
	modelPath := flag.String("model", "models/fruit_expert.onnx", "fruit model path")
	threshold := flag.Float64("threshold", float64(detect.ThresholdDefault), "detection threshold")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	detector, err := detect.NewONNXDetector("fruit_expert", detect.FruitModelConfig(*modelPath), common.SourceFruit, logger)
	if err != nil {
		logger.Error("failed to load model", "error", err)
		os.Exit(1)
	}
	defer detector.Close()

	webcam, err := gocv.OpenVideoCapture(*deviceID)
	if err != nil {
		logger.Error("failed to open webcam", "device", *deviceID, "error", err)
		os.Exit(1)
	}
	defer webcam.Close()

	window := gocv.NewWindow("Tomato Live Scan")
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	logger.Info("live scan started, press ESC to quit", "device", *deviceID)

	ctx := context.Background()
	for {
		if ok := webcam.Read(&frame); !ok || frame.Empty() {
			continue
		}

		img, err := frame.ToImage()
		if err != nil {
			logger.Warn("failed to convert frame", "error", err)
			continue
		}

		boxes, err := detector.Detect(ctx, img, float32(*threshold))
		if err != nil {
			logger.Warn("detection failed", "error", err)
			continue
		}

		for _, box := range boxes {
			c := colorDisease
			if labels.IsHealthy(box.Label) || labels.IsRipe(box.Label) {
				c = colorHealthy
			}
			rect := image.Rect(int(box.X1), int(box.Y1), int(box.X2), int(box.Y2))
			gocv.Rectangle(&frame, rect, c, 2)
			caption := fmt.Sprintf("%s %.0f%%", labels.DisplayName(box.Label), box.Confidence*100)
			gocv.PutText(&frame, caption,
				image.Pt(rect.Min.X, rect.Min.Y-8),
				gocv.FontHersheySimplex, 0.6, c, 2)
		}

		window.IMShow(frame)
		if window.WaitKey(1) == 27 {
			break
		}
	}
}
