package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png" // ffmpeg frames are piped as PNG
	"os/exec"
	"strconv"

	"vidshelf/internal/logging"
)

// probeOutput is the subset of `ffprobe -print_format json` we read.
type probeOutput struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

// FFmpegDecoder reads video files by shelling out to ffprobe and ffmpeg.
type FFmpegDecoder struct {
	FFmpegPath  string
	FFprobePath string
}

// NewFFmpegDecoder creates a decoder using the given binaries. Empty values
// fall back to "ffmpeg" and "ffprobe" on PATH.
func NewFFmpegDecoder(ffmpegPath, ffprobePath string) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegDecoder{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// Probe implements Decoder.
func (d *FFmpegDecoder) Probe(ctx context.Context, path string) (StreamInfo, error) {
	cmd := exec.CommandContext(ctx, d.FFprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return StreamInfo{}, fmt.Errorf("ffprobe: %w - %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	return parseProbeOutput(stdout.Bytes())
}

func parseProbeOutput(data []byte) (StreamInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return StreamInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" || s.Width <= 0 || s.Height <= 0 {
			continue
		}

		info := StreamInfo{
			Width:     s.Width,
			Height:    s.Height,
			Codec:     s.CodecName,
			Container: out.Format.FormatName,
		}
		if v, err := strconv.ParseFloat(s.Duration, 64); err == nil {
			info.Duration = v
		} else if v, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
			info.Duration = v
		}
		return info, nil
	}

	return StreamInfo{}, fmt.Errorf("no video stream")
}

// FrameAt implements Decoder. When seeking fails the first frame is used.
func (d *FFmpegDecoder) FrameAt(ctx context.Context, path string, seconds float64) (image.Image, error) {
	img, err := d.grab(ctx, path, seconds)
	if err == nil || seconds <= 0 || ctx.Err() != nil {
		return img, err
	}

	logging.Debug("Frame grab at %.2fs failed for %s, retrying at start: %v", seconds, path, err)
	return d.grab(ctx, path, 0)
}

func (d *FFmpegDecoder) grab(ctx context.Context, path string, seconds float64) (image.Image, error) {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if seconds > 0 {
		args = append(args, "-ss", strconv.FormatFloat(seconds, 'f', 3, 64))
	}
	args = append(args,
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	cmd := exec.CommandContext(ctx, d.FFmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w - %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}
