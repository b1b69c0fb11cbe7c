package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestParseProbeOutput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    StreamInfo
		wantErr bool
	}{
		{
			name: "stream duration",
			input: `{"format":{"format_name":"mov,mp4,m4a,3gp,3g2,mj2","duration":"12.50"},
				"streams":[{"codec_type":"audio","codec_name":"aac"},
				{"codec_type":"video","codec_name":"h264","width":1920,"height":1080,"duration":"12.48"}]}`,
			want: StreamInfo{Duration: 12.48, Width: 1920, Height: 1080, Codec: "h264", Container: "mov,mp4,m4a,3gp,3g2,mj2"},
		},
		{
			name: "format duration fallback",
			input: `{"format":{"format_name":"matroska,webm","duration":"61.000"},
				"streams":[{"codec_type":"video","codec_name":"vp9","width":640,"height":360}]}`,
			want: StreamInfo{Duration: 61, Width: 640, Height: 360, Codec: "vp9", Container: "matroska,webm"},
		},
		{
			name:  "unknown duration",
			input: `{"format":{"format_name":"mpegts"},"streams":[{"codec_type":"video","codec_name":"mpeg2video","width":720,"height":576}]}`,
			want:  StreamInfo{Width: 720, Height: 576, Codec: "mpeg2video", Container: "mpegts"},
		},
		{
			name:    "audio only",
			input:   `{"format":{"duration":"3.0"},"streams":[{"codec_type":"audio","codec_name":"mp3"}]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   `ffprobe: invalid data`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbeOutput([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseProbeOutput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseProbeOutput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewFFmpegDecoderDefaults(t *testing.T) {
	d := NewFFmpegDecoder("", "")
	if d.FFmpegPath != "ffmpeg" || d.FFprobePath != "ffprobe" {
		t.Errorf("defaults = %q, %q", d.FFmpegPath, d.FFprobePath)
	}
}

func TestFFmpegDecoderMissingFile(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not available")
	}

	d := NewFFmpegDecoder("", "")
	_, err := d.Probe(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if err == nil {
		t.Error("Probe() on a missing file returned nil error")
	}
}

func TestFFmpegDecoderGeneratedClip(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not available")
	}

	path := filepath.Join(t.TempDir(), "clip.mp4")
	gen := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=320x240:rate=10",
		"-pix_fmt", "yuv420p", path)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("could not generate test clip: %v: %s", err, out)
	}

	d := NewFFmpegDecoder("", "")
	info, err := d.Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("Probe() size = %dx%d, want 320x240", info.Width, info.Height)
	}
	if info.Duration < 1.5 || info.Duration > 2.5 {
		t.Errorf("Probe() duration = %v, want about 2", info.Duration)
	}

	frame, err := d.FrameAt(context.Background(), path, SeekTarget(info.Duration))
	if err != nil {
		t.Fatalf("FrameAt() error = %v", err)
	}
	if b := frame.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("frame size = %dx%d, want 320x240", b.Dx(), b.Dy())
	}
}

func TestImageCanvas(t *testing.T) {
	if _, err := (ImageCanvas{}).NewSurface(0, 10); !errors.Is(err, ErrCanvasUnavailable) {
		t.Errorf("NewSurface(0, 10) error = %v, want ErrCanvasUnavailable", err)
	}

	s, err := ImageCanvas{}.NewSurface(48, 27)
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	if err := s.Draw(image.NewRGBA(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("Draw() of an empty frame returned nil error")
	}
	if err := s.Draw(image.NewRGBA(image.Rect(0, 0, 1920, 1080))); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	low, err := s.EncodeJPEG(60)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(low))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if cfg.Width != 48 || cfg.Height != 27 {
		t.Errorf("output size = %dx%d, want 48x27", cfg.Width, cfg.Height)
	}
}
