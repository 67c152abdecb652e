package onsite

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG uploads are re-encoded as JPEG
	"math"

	"golang.org/x/image/draw"
)

const (
	photoMaxBytes    = 150 * 1024
	photoTargetBytes = 100 * 1024
	photoMaxEdge     = 1920
)

// compressPhoto re-encodes a site photo as JPEG no larger than photoMaxBytes.
// Quality is lowered first; if that is not enough the image is scaled down.
func compressPhoto(buffer []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Phone cameras produce far more pixels than a site photo needs
	if b := img.Bounds(); b.Dx() > photoMaxEdge || b.Dy() > photoMaxEdge {
		scale := float64(photoMaxEdge) / math.Max(float64(b.Dx()), float64(b.Dy()))
		img = resize(img, int(float64(b.Dx())*scale), int(float64(b.Dy())*scale))
	}

	var compressed []byte
	for quality := 85; quality >= 50; quality -= 5 {
		compressed, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(compressed) <= photoMaxBytes {
			return compressed, nil
		}
	}

	// Scale down until it fits; each pass aims a little under the target
	for attempt := 0; attempt < 6 && len(compressed) > photoMaxBytes; attempt++ {
		ratio := 0.9 * math.Sqrt(float64(photoTargetBytes)/float64(len(compressed)))
		b := img.Bounds()
		img = resize(img, max(int(float64(b.Dx())*ratio), 1), max(int(float64(b.Dy())*ratio), 1))
		compressed, err = encodeJPEG(img, 70)
		if err != nil {
			return nil, err
		}
	}
	return compressed, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

func resize(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
