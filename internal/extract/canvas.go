package extract

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Surface is a fixed-size drawing target.
type Surface interface {
	// Draw scales img to fill the surface.
	Draw(img image.Image) error
	// EncodeJPEG returns the surface contents as JPEG at quality 1-100.
	EncodeJPEG(quality int) ([]byte, error)
}

// Canvas creates drawing surfaces.
type Canvas interface {
	NewSurface(width, height int) (Surface, error)
}

// ImageCanvas draws with golang.org/x/image and encodes with imaging.
type ImageCanvas struct {
	// Scaler defaults to draw.CatmullRom.
	Scaler draw.Scaler
}

// NewSurface implements Canvas.
func (c ImageCanvas) NewSurface(width, height int) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrCanvasUnavailable, width, height)
	}
	scaler := c.Scaler
	if scaler == nil {
		scaler = draw.CatmullRom
	}
	return &imageSurface{
		dst:    image.NewRGBA(image.Rect(0, 0, width, height)),
		scaler: scaler,
	}, nil
}

type imageSurface struct {
	dst    *image.RGBA
	scaler draw.Scaler
}

func (s *imageSurface) Draw(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("empty frame")
	}
	s.scaler.Scale(s.dst, s.dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return nil
}

func (s *imageSurface) EncodeJPEG(quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, s.dst, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
