package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"vidshelf/internal/blob"
	"vidshelf/internal/logging"
	"vidshelf/internal/media"
	"vidshelf/internal/mediatypes"
	"vidshelf/internal/metrics"
	"vidshelf/internal/workers"
)

var (
	// ErrCanvasUnavailable means no drawing surface could be created. Retrying will not help.
	ErrCanvasUnavailable = errors.New("could not get canvas context")
	// ErrDecode means the file could not be loaded or a frame could not be read.
	ErrDecode = errors.New("error loading video format")
	// ErrCapture means a frame was read but could not be turned into a thumbnail.
	ErrCapture = errors.New("failed to generate thumbnail")
	// ErrTimeout means the file produced no data within its load budget.
	ErrTimeout = errors.New("video loading timeout")
)

// DataURIPrefix starts every thumbnail produced by the extractor.
const DataURIPrefix = "data:image/jpeg;base64,"

// StreamInfo describes the first video stream of a file.
type StreamInfo struct {
	Duration  float64
	Width     int
	Height    int
	Codec     string
	Container string
}

// Decoder reads stream information and frames from a video file.
type Decoder interface {
	Probe(ctx context.Context, path string) (StreamInfo, error)
	FrameAt(ctx context.Context, path string, seconds float64) (image.Image, error)
}

// Result is the outcome of a successful extraction.
type Result struct {
	Thumbnail  string
	Duration   float64
	Resolution string
}

// Config wires an Extractor.
type Config struct {
	Decoder Decoder
	Canvas  Canvas
	Blobs   *blob.Registry
	// Timeout returns the load budget for an extension. Defaults to mediatypes.LoadTimeout.
	Timeout func(ext string) time.Duration
	// BatchSize defaults to workers.DefaultBatchSize.
	BatchSize int
}

// Extractor produces thumbnails and technical metadata for video files.
type Extractor struct {
	decoder   Decoder
	canvas    Canvas
	blobs     *blob.Registry
	timeout   func(ext string) time.Duration
	batchSize int
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	e := &Extractor{
		decoder:   cfg.Decoder,
		canvas:    cfg.Canvas,
		blobs:     cfg.Blobs,
		timeout:   cfg.Timeout,
		batchSize: cfg.BatchSize,
	}
	if e.blobs == nil {
		e.blobs = blob.NewRegistry(nil)
	}
	if e.timeout == nil {
		e.timeout = mediatypes.LoadTimeout
	}
	if e.batchSize <= 0 {
		e.batchSize = workers.DefaultBatchSize
	}
	return e
}

// SeekTarget returns the capture position: 10% into the video, at most one second.
func SeekTarget(duration float64) float64 {
	if math.IsNaN(duration) || duration <= 0 {
		return 0
	}
	return math.Min(1, duration*0.1)
}

// ThumbnailSize returns the surface size for a video of w x h at tier q.
// The width never exceeds the source width and the aspect ratio is kept.
func ThumbnailSize(q media.Quality, w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	width := min(w, q.Width())
	height := int(math.Floor(float64(width) * float64(h) / float64(w)))
	return width, max(height, 1)
}

// Extract probes f, captures a frame and encodes it as a JPEG data URI.
func (e *Extractor) Extract(ctx context.Context, f media.MediaFile, q media.Quality) (result Result, err error) {
	start := time.Now()
	metrics.ExtractionsInFlight.Inc()
	defer func() {
		metrics.ExtractionsInFlight.Dec()
		metrics.ExtractionsTotal.WithLabelValues(string(q), statusOf(err)).Inc()
		metrics.ExtractionDuration.WithLabelValues(string(q)).Observe(time.Since(start).Seconds())
	}()

	ext := f.Ext
	if ext == "" {
		ext = mediatypes.ExtensionOf(f.Name)
	}
	label := strings.ToUpper(ext)

	if e.canvas == nil {
		return Result{}, ErrCanvasUnavailable
	}

	ref := e.blobs.Create(f.Path)
	defer e.blobs.Revoke(ref)

	entry, ok := e.blobs.Resolve(ref)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrDecode, label)
	}

	info, err := raceTimeout(ctx, e.timeout(ext), func(ctx context.Context) (StreamInfo, error) {
		return e.decoder.Probe(ctx, entry.Path)
	})
	if err != nil {
		return Result{}, wrapLoadError(err, label)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return Result{}, fmt.Errorf("%w: %s: no video dimensions", ErrDecode, label)
	}

	width, height := ThumbnailSize(q, info.Width, info.Height)
	surface, err := e.canvas.NewSurface(width, height)
	if err != nil {
		if errors.Is(err, ErrCanvasUnavailable) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %w", ErrCanvasUnavailable, err)
	}

	// Frame capture gets a budget of its own so a stalled decoder cannot
	// hold the batch.
	frame, err := raceTimeout(ctx, e.timeout(ext), func(ctx context.Context) (image.Image, error) {
		return e.decoder.FrameAt(ctx, entry.Path, SeekTarget(info.Duration))
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, wrapLoadError(err, label)
	}

	if err := surface.Draw(frame); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	data, err := surface.EncodeJPEG(q.JPEGQuality())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	metrics.ThumbnailBytes.Observe(float64(len(data)))

	return Result{
		Thumbnail:  DataURIPrefix + base64.StdEncoding.EncodeToString(data),
		Duration:   info.Duration,
		Resolution: fmt.Sprintf("%dx%d", info.Width, info.Height),
	}, nil
}

// ProcessAll extracts every file in batches and returns one record per file,
// in input order. Failed or skipped files get placeholder records.
func (e *Extractor) ProcessAll(ctx context.Context, files []media.MediaFile, q media.Quality) []media.VideoMetadata {
	batcher := workers.Batcher[media.MediaFile, media.VideoMetadata]{
		Size: e.batchSize,
		Run: func(ctx context.Context, f media.MediaFile) media.VideoMetadata {
			res, err := e.Extract(ctx, f, q)
			if err != nil {
				logging.Debug("Error processing %s: %v", f.Name, err)
				return media.Placeholder(f, err)
			}
			return media.VideoMetadata{
				ID:        f.ID(),
				File:      f,
				Thumbnail: res.Thumbnail,
				Meta: media.Meta{
					Duration:   res.Duration,
					Resolution: res.Resolution,
					Created:    f.ModTime.UnixMilli(),
					Size:       f.Size,
				},
			}
		},
		Skip: func(f media.MediaFile) media.VideoMetadata {
			return media.Placeholder(f, ctx.Err())
		},
		OnBatch: func(index, size int) {
			metrics.ExtractionBatchSize.Observe(float64(size))
			logging.Debug("Extracting batch %d (%d files)", index+1, size)
		},
	}

	return batcher.Process(ctx, files)
}

// raceTimeout runs task against a timer. The timer only covers the task:
// once it delivers, the budget no longer applies.
func raceTimeout[T any](ctx context.Context, budget time.Duration, task func(context.Context) (T, error)) (T, error) {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := task(taskCtx)
		done <- outcome{v, err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	var zero T
	select {
	case o := <-done:
		return o.value, o.err
	case <-timer.C:
		return zero, ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func wrapLoadError(err error, label string) error {
	switch {
	case errors.Is(err, ErrTimeout):
		return fmt.Errorf("%w: %s", ErrTimeout, label)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %s: %w", ErrDecode, label, err)
	}
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrCanvasUnavailable):
		return "canvas_unavailable"
	case errors.Is(err, ErrCapture):
		return "capture_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "decode_error"
	}
}
