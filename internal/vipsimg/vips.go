// Package vipsimg provides a libvips-backed thumbnail canvas.
//
// libvips is initialised once per process with Init. govips cannot be
// restarted after Shutdown, so Shutdown belongs at process exit.
package vipsimg

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"vidshelf/internal/extract"
	"vidshelf/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	initMu      sync.Mutex
	initialized bool
	available   bool
)

// logConfig maps the application log level onto libvips: messages below
// the returned threshold are dropped by libvips, the rest are forwarded.
func logConfig(level logging.LogLevel) (vips.LogLevel, func(string, vips.LogLevel, string)) {
	forward := func(domain string, l vips.LogLevel, msg string) {
		switch {
		case l <= vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case l == vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}

	switch level {
	case logging.LevelDebug:
		return vips.LogLevelInfo, forward
	case logging.LevelWarn:
		return vips.LogLevelError, forward
	case logging.LevelError:
		return vips.LogLevelCritical, forward
	default:
		return vips.LogLevelWarning, forward
	}
}

// Init starts libvips. Repeated calls are no-ops.
func Init() error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil
	}

	level, handler := logConfig(logging.GetLevel())
	vips.LoggingSettings(handler, level)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	initialized = true
	available = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// Shutdown releases libvips.
func Shutdown() {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		vips.Shutdown()
		initialized = false
		available = false
		logging.Info("libvips shutdown complete")
	}
}

// IsAvailable reports whether libvips is running.
func IsAvailable() bool {
	initMu.Lock()
	defer initMu.Unlock()
	return available
}

// Canvas renders thumbnails with libvips.
type Canvas struct{}

// NewSurface implements extract.Canvas.
func (Canvas) NewSurface(width, height int) (extract.Surface, error) {
	if !IsAvailable() {
		return nil, fmt.Errorf("%w: libvips not available", extract.ErrCanvasUnavailable)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", extract.ErrCanvasUnavailable, width, height)
	}
	return &surface{width: width, height: height}, nil
}

type surface struct {
	width  int
	height int
	frame  []byte
}

func (s *surface) Draw(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("empty frame")
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return fmt.Errorf("buffer frame: %w", err)
	}
	s.frame = buf.Bytes()
	return nil
}

func (s *surface) EncodeJPEG(quality int) ([]byte, error) {
	if s.frame == nil {
		return nil, fmt.Errorf("nothing drawn")
	}

	ref, err := vips.NewImageFromBuffer(s.frame)
	if err != nil {
		return nil, fmt.Errorf("vips failed to load frame: %w", err)
	}
	defer ref.Close()

	if err := ref.ThumbnailWithSize(s.width, s.height, vips.InterestingNone, vips.SizeForce); err != nil {
		return nil, fmt.Errorf("vips resize failed: %w", err)
	}

	out, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        quality,
		StripMetadata:  true,
		OptimizeCoding: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vips export failed: %w", err)
	}
	return out, nil
}
