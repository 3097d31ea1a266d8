package inference

import (
	"image"

	"github.com/nfnt/resize"
	ort "github.com/yalue/onnxruntime_go"
)

// PrepareInput resizes an image to the model input resolution and writes it
// into the input tensor in CHW layout with values scaled to [0, 1].
//
// Arguments:
//   - img: The source image at its original resolution.
//   - dst: The session input tensor, shaped (1, 3, size, size).
//   - size: The square model input resolution.
func PrepareInput(img image.Image, dst *ort.Tensor[float32], size int) {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	data := dst.GetData()
	channelSize := size * size
	red := data[0:channelSize]
	green := data[channelSize : channelSize*2]
	blue := data[channelSize*2 : channelSize*3]

	idx := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			red[idx] = float32(r>>8) / 255.0
			green[idx] = float32(g>>8) / 255.0
			blue[idx] = float32(b>>8) / 255.0
			idx++
		}
	}
}
