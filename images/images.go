// Package images - Image decode/encode utilities.
package images

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
)

// ImageFormat represents supported image formats.
type ImageFormat string

// ImageFormat constants.
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
)

// jpegQuality is used for all saved scan copies.
const jpegQuality = 90

// Decode decodes JPEG, PNG, or WebP bytes into an image.Image.
//
// Arguments:
// - data: The raw image bytes as uploaded.
//
// Returns:
// - The decoded image and its format.
// - An error if the bytes are not a supported image.
func Decode(data []byte) (image.Image, ImageFormat, error) {
	// WebP arrives in a RIFF container; the standard decoders don't know it.
	if len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to decode webp image")
		}
		return img, FormatWebP, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to decode image")
	}
	return img, ImageFormat(format), nil
}

// EncodeJPEG encodes an image as JPEG bytes.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.Wrap(err, "failed to encode jpeg")
	}
	return buf.Bytes(), nil
}

// SaveJPEG writes an image to disk as JPEG.
func SaveJPEG(path string, img image.Image) error {
	data, err := EncodeJPEG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
