package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vidshelf/internal/blob"
	"vidshelf/internal/media"
)

// fakeDecoder serves canned stream info keyed by path.
type fakeDecoder struct {
	infos    map[string]StreamInfo
	probeErr map[string]error
	stall    map[string]bool
	// stallFrame blocks FrameAt until its context ends.
	stallFrame bool
	frameErr   error

	mu       sync.Mutex
	seeks    map[string]float64
	inFlight int32
	peak     int32
	delay    time.Duration
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{
		infos:    make(map[string]StreamInfo),
		probeErr: make(map[string]error),
		stall:    make(map[string]bool),
		seeks:    make(map[string]float64),
	}
}

func (d *fakeDecoder) Probe(ctx context.Context, path string) (StreamInfo, error) {
	n := atomic.AddInt32(&d.inFlight, 1)
	defer atomic.AddInt32(&d.inFlight, -1)
	for {
		p := atomic.LoadInt32(&d.peak)
		if n <= p || atomic.CompareAndSwapInt32(&d.peak, p, n) {
			break
		}
	}

	if d.stall[path] {
		<-ctx.Done()
		return StreamInfo{}, ctx.Err()
	}
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	if err := d.probeErr[path]; err != nil {
		return StreamInfo{}, err
	}
	return d.infos[path], nil
}

func (d *fakeDecoder) FrameAt(ctx context.Context, path string, seconds float64) (image.Image, error) {
	d.mu.Lock()
	d.seeks[path] = seconds
	d.mu.Unlock()

	if d.stallFrame {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if d.frameErr != nil {
		return nil, d.frameErr
	}
	info := d.infos[path]
	img := image.NewRGBA(image.Rect(0, 0, info.Width, info.Height))
	for y := 0; y < info.Height; y++ {
		for x := 0; x < info.Width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img, nil
}

func (d *fakeDecoder) seekFor(path string) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seeks[path]
}

// failingCanvas never yields a surface.
type failingCanvas struct{}

func (failingCanvas) NewSurface(int, int) (Surface, error) {
	return nil, errors.New("no 2d context")
}

func file(name string) media.MediaFile {
	return media.MediaFile{
		Name:    name,
		Path:    "/videos/" + name,
		Size:    1024,
		ModTime: time.UnixMilli(1_700_000_000_000),
		Ext:     strings.ToLower(name[strings.LastIndex(name, ".")+1:]),
	}
}

func newTestExtractor(dec Decoder, canvas Canvas, reg *blob.Registry) *Extractor {
	return New(Config{
		Decoder: dec,
		Canvas:  canvas,
		Blobs:   reg,
		Timeout: func(string) time.Duration { return 50 * time.Millisecond },
	})
}

func TestSeekTarget(t *testing.T) {
	tests := []struct {
		duration float64
		want     float64
	}{
		{2, 0.2},
		{30, 1.0},
		{10, 1.0},
		{5, 0.5},
		{0, 0},
		{-1, 0},
	}

	for _, tt := range tests {
		got := SeekTarget(tt.duration)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("SeekTarget(%v) = %v, want %v", tt.duration, got, tt.want)
		}
	}
}

func TestThumbnailSize(t *testing.T) {
	tests := []struct {
		name  string
		q     media.Quality
		w, h  int
		wantW int
		wantH int
	}{
		{"low 1080p", media.QualityLow, 1920, 1080, 320, 180},
		{"medium 1080p", media.QualityMedium, 1920, 1080, 480, 270},
		{"high 1080p", media.QualityHigh, 1920, 1080, 640, 360},
		{"smaller than tier", media.QualityHigh, 400, 300, 400, 300},
		{"floors height", media.QualityMedium, 1000, 333, 480, 159},
		{"portrait", media.QualityLow, 720, 1280, 320, 568},
		{"no dimensions", media.QualityLow, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ThumbnailSize(tt.q, tt.w, tt.h)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ThumbnailSize(%s, %d, %d) = %dx%d, want %dx%d", tt.q, tt.w, tt.h, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestExtractSuccess(t *testing.T) {
	dec := newFakeDecoder()
	f := file("clip.mp4")
	dec.infos[f.Path] = StreamInfo{Duration: 2, Width: 640, Height: 360}
	reg := blob.NewRegistry(nil)

	res, err := newTestExtractor(dec, ImageCanvas{}, reg).Extract(context.Background(), f, media.QualityLow)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if res.Resolution != "640x360" {
		t.Errorf("Resolution = %q, want 640x360", res.Resolution)
	}
	if res.Duration != 2 {
		t.Errorf("Duration = %v, want 2", res.Duration)
	}
	if got := dec.seekFor(f.Path); got < 0.1999 || got > 0.2001 {
		t.Errorf("seek = %v, want 0.2", got)
	}
	if !strings.HasPrefix(res.Thumbnail, DataURIPrefix) {
		t.Fatalf("Thumbnail does not start with %q", DataURIPrefix)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(res.Thumbnail, DataURIPrefix))
	if err != nil {
		t.Fatalf("thumbnail is not base64: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("thumbnail is not a JPEG: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 180 {
		t.Errorf("thumbnail size = %dx%d, want 320x180", cfg.Width, cfg.Height)
	}

	if n := reg.Len(); n != 0 {
		t.Errorf("registry holds %d references after extraction, want 0", n)
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(d *fakeDecoder, f media.MediaFile)
		canvas  Canvas
		wantErr error
		wantMsg string
	}{
		{
			name: "stalled load times out",
			setup: func(d *fakeDecoder, f media.MediaFile) {
				d.stall[f.Path] = true
			},
			canvas:  ImageCanvas{},
			wantErr: ErrTimeout,
			wantMsg: "video loading timeout: MKV",
		},
		{
			name: "decode error carries extension",
			setup: func(d *fakeDecoder, f media.MediaFile) {
				d.probeErr[f.Path] = errors.New("invalid data found")
			},
			canvas:  ImageCanvas{},
			wantErr: ErrDecode,
			wantMsg: "error loading video format: MKV",
		},
		{
			name: "no video stream",
			setup: func(d *fakeDecoder, f media.MediaFile) {
				d.infos[f.Path] = StreamInfo{Duration: 3}
			},
			canvas:  ImageCanvas{},
			wantErr: ErrDecode,
		},
		{
			name: "frame capture fails",
			setup: func(d *fakeDecoder, f media.MediaFile) {
				d.infos[f.Path] = StreamInfo{Duration: 3, Width: 64, Height: 36}
				d.frameErr = errors.New("seek failed")
			},
			canvas:  ImageCanvas{},
			wantErr: ErrDecode,
		},
		{
			name: "stalled frame capture times out",
			setup: func(d *fakeDecoder, f media.MediaFile) {
				d.infos[f.Path] = StreamInfo{Duration: 3, Width: 64, Height: 36}
				d.stallFrame = true
			},
			canvas:  ImageCanvas{},
			wantErr: ErrTimeout,
			wantMsg: "video loading timeout: MKV",
		},
		{
			name: "canvas unavailable",
			setup: func(d *fakeDecoder, f media.MediaFile) {
				d.infos[f.Path] = StreamInfo{Duration: 3, Width: 64, Height: 36}
			},
			canvas:  failingCanvas{},
			wantErr: ErrCanvasUnavailable,
		},
		{
			name:    "nil canvas",
			setup:   func(*fakeDecoder, media.MediaFile) {},
			canvas:  nil,
			wantErr: ErrCanvasUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := newFakeDecoder()
			f := file("movie.mkv")
			tt.setup(dec, f)
			reg := blob.NewRegistry(nil)

			_, err := newTestExtractor(dec, tt.canvas, reg).Extract(context.Background(), f, media.QualityMedium)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.HasPrefix(err.Error(), tt.wantMsg) {
				t.Errorf("error message = %q, want prefix %q", err.Error(), tt.wantMsg)
			}
			if n := reg.Len(); n != 0 {
				t.Errorf("registry holds %d references after failure, want 0", n)
			}
		})
	}
}

func TestProbeCompletionCancelsTimeout(t *testing.T) {
	dec := newFakeDecoder()
	f := file("slow.mp4")
	dec.infos[f.Path] = StreamInfo{Duration: 30, Width: 32, Height: 18}
	dec.delay = 10 * time.Millisecond

	ex := New(Config{
		Decoder: dec,
		Canvas:  ImageCanvas{},
		Timeout: func(string) time.Duration { return 30 * time.Millisecond },
	})

	res, err := ex.Extract(context.Background(), f, media.QualityLow)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := dec.seekFor(f.Path); got != 1.0 {
		t.Errorf("seek = %v, want 1.0", got)
	}
	if res.Resolution != "32x18" {
		t.Errorf("Resolution = %q, want 32x18", res.Resolution)
	}
}

func TestProcessAllPlaceholders(t *testing.T) {
	dec := newFakeDecoder()
	good := file("good.mp4")
	bad := file("bad.avi")
	stalled := file("stalled.mkv")
	dec.infos[good.Path] = StreamInfo{Duration: 12, Width: 64, Height: 36}
	dec.probeErr[bad.Path] = errors.New("moov atom not found")
	dec.stall[stalled.Path] = true
	reg := blob.NewRegistry(nil)

	files := []media.MediaFile{good, bad, stalled}
	out := newTestExtractor(dec, ImageCanvas{}, reg).ProcessAll(context.Background(), files, media.QualityMedium)

	if len(out) != len(files) {
		t.Fatalf("ProcessAll() returned %d records, want %d", len(out), len(files))
	}
	for i, v := range out {
		if v.File.Path != files[i].Path {
			t.Errorf("record %d is %s, want %s", i, v.File.Path, files[i].Path)
		}
		if v.ID != files[i].ID() {
			t.Errorf("record %d ID = %s, want %s", i, v.ID, files[i].ID())
		}
		if v.Meta.Created != files[i].ModTime.UnixMilli() || v.Meta.Size != files[i].Size {
			t.Errorf("record %d meta = %+v, want created/size from file", i, v.Meta)
		}
	}

	if out[0].IsPlaceholder() || out[0].Meta.Resolution != "64x36" || out[0].Meta.Duration != 12 {
		t.Errorf("good record = %+v, want extracted metadata", out[0].Meta)
	}
	for _, v := range out[1:] {
		if v.Meta.Duration != 0 || v.Meta.Resolution != "Unknown" || v.Thumbnail != "" {
			t.Errorf("%s = %+v thumbnail %q, want placeholder", v.File.Name, v.Meta, v.Thumbnail)
		}
	}
	if n := reg.Len(); n != 0 {
		t.Errorf("registry holds %d references, want 0", n)
	}
}

func TestProcessAllCanvasFailure(t *testing.T) {
	dec := newFakeDecoder()
	files := []media.MediaFile{file("a.mp4"), file("b.webm")}
	for _, f := range files {
		dec.infos[f.Path] = StreamInfo{Duration: 5, Width: 64, Height: 36}
	}

	out := newTestExtractor(dec, failingCanvas{}, nil).ProcessAll(context.Background(), files, media.QualityHigh)
	for _, v := range out {
		if !v.IsPlaceholder() {
			t.Errorf("%s is not a placeholder after canvas failure", v.File.Name)
		}
	}
}

func TestProcessAllBatchesOfThree(t *testing.T) {
	dec := newFakeDecoder()
	dec.delay = 5 * time.Millisecond
	var files []media.MediaFile
	for _, name := range []string{"1.mp4", "2.mp4", "3.mp4", "4.mp4", "5.mp4", "6.mp4", "7.mp4"} {
		f := file(name)
		dec.infos[f.Path] = StreamInfo{Duration: 4, Width: 16, Height: 9}
		files = append(files, f)
	}

	ex := New(Config{Decoder: dec, Canvas: ImageCanvas{}})
	out := ex.ProcessAll(context.Background(), files, media.QualityLow)

	if len(out) != 7 {
		t.Fatalf("ProcessAll() returned %d records, want 7", len(out))
	}
	if peak := atomic.LoadInt32(&dec.peak); peak > 3 {
		t.Errorf("peak concurrent probes = %d, want <= 3", peak)
	}
}

func TestProcessAllCancelled(t *testing.T) {
	dec := newFakeDecoder()
	var files []media.MediaFile
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4", "d.mp4"} {
		f := file(name)
		dec.infos[f.Path] = StreamInfo{Duration: 4, Width: 16, Height: 9}
		files = append(files, f)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := New(Config{Decoder: dec, Canvas: ImageCanvas{}}).ProcessAll(ctx, files, media.QualityLow)
	if len(out) != len(files) {
		t.Fatalf("ProcessAll() returned %d records, want %d", len(out), len(files))
	}
	for _, v := range out {
		if !v.IsPlaceholder() {
			t.Errorf("%s extracted after cancellation", v.File.Name)
		}
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{ErrTimeout, "timeout"},
		{ErrCanvasUnavailable, "canvas_unavailable"},
		{ErrCapture, "capture_error"},
		{ErrDecode, "decode_error"},
		{context.Canceled, "canceled"},
		{errors.New("other"), "decode_error"},
	}

	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestProcessAllStalledCaptureFinishes(t *testing.T) {
	dec := newFakeDecoder()
	dec.stallFrame = true
	files := []media.MediaFile{file("a.mp4"), file("b.mkv"), file("c.webm"), file("d.avi")}
	for _, f := range files {
		dec.infos[f.Path] = StreamInfo{Duration: 5, Width: 64, Height: 36}
	}

	done := make(chan []media.VideoMetadata, 1)
	go func() {
		done <- newTestExtractor(dec, ImageCanvas{}, nil).ProcessAll(context.Background(), files, media.QualityLow)
	}()

	select {
	case got := <-done:
		if len(got) != len(files) {
			t.Fatalf("ProcessAll() returned %d records, want %d", len(got), len(files))
		}
		for _, v := range got {
			if !v.IsPlaceholder() || !strings.Contains(v.Error, ErrTimeout.Error()) {
				t.Errorf("%s: record = %+v, want a timeout placeholder", v.File.Name, v)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessAll() still blocked 2s after a 50ms capture budget")
	}
}
