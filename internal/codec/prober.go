package codec

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"mime"
	"os/exec"
	"strings"
)

// ReportedProber answers from confidences reported by a client, keyed by
// the exact MIME string that was probed. Unknown types are unsupported.
type ReportedProber struct {
	answers map[string]Confidence
}

// NewReportedProber creates a prober from a client report.
func NewReportedProber(report map[string]string) *ReportedProber {
	answers := make(map[string]Confidence, len(report))
	for mt, c := range report {
		answers[mt] = ParseConfidence(c)
	}
	return &ReportedProber{answers: answers}
}

// CanPlayType implements Prober.
func (p *ReportedProber) CanPlayType(mimeType string) Confidence {
	return p.answers[mimeType]
}

// containerDemuxers lists the ffmpeg demuxers able to open each container.
var containerDemuxers = map[string][]string{
	"video/mp4":        {"mov"},
	"video/quicktime":  {"mov"},
	"video/webm":       {"matroska", "webm"},
	"video/x-matroska": {"matroska"},
	"video/ogg":        {"ogg"},
	"video/x-msvideo":  {"avi"},
}

// codecDecoders maps RFC 6381 codec prefixes to ffmpeg decoder names.
var codecDecoders = map[string][]string{
	"avc1":   {"h264"},
	"avc3":   {"h264"},
	"hev1":   {"hevc"},
	"hvc1":   {"hevc"},
	"vp8":    {"vp8", "libvpx"},
	"vp9":    {"vp9", "libvpx-vp9"},
	"av01":   {"av1", "libdav1d", "libaom-av1"},
	"theora": {"theora"},
	"vorbis": {"vorbis", "libvorbis"},
	"opus":   {"opus", "libopus"},
	"mp4a":   {"aac"},
}

// FFmpegProber answers from the decoders and demuxers compiled into the
// local ffmpeg. A known container whose listed codecs all decode is
// "probably"; a known container without a codecs parameter is "maybe".
type FFmpegProber struct {
	decoders map[string]bool
	demuxers map[string]bool
}

// NewFFmpegProber queries ffmpegPath for its capabilities.
func NewFFmpegProber(ctx context.Context, ffmpegPath string) (*FFmpegProber, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	decoders, err := listCapabilities(ctx, ffmpegPath, "-decoders")
	if err != nil {
		return nil, err
	}
	demuxers, err := listCapabilities(ctx, ffmpegPath, "-demuxers")
	if err != nil {
		return nil, err
	}
	return NewStaticFFmpegProber(decoders, demuxers), nil
}

// NewStaticFFmpegProber builds a prober from known capability lists.
func NewStaticFFmpegProber(decoders, demuxers []string) *FFmpegProber {
	p := &FFmpegProber{
		decoders: make(map[string]bool, len(decoders)),
		demuxers: make(map[string]bool, len(demuxers)),
	}
	for _, d := range decoders {
		p.decoders[d] = true
	}
	for _, d := range demuxers {
		p.demuxers[d] = true
	}
	return p
}

// CanPlayType implements Prober.
func (p *FFmpegProber) CanPlayType(mimeType string) Confidence {
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return Unsupported
	}

	if !p.anyOf(p.demuxers, containerDemuxers[mediaType]) {
		return Unsupported
	}

	codecs := strings.TrimSpace(params["codecs"])
	if codecs == "" {
		return Maybe
	}

	for _, c := range strings.Split(codecs, ",") {
		c = strings.TrimSpace(c)
		prefix, _, _ := strings.Cut(c, ".")
		if !p.anyOf(p.decoders, codecDecoders[strings.ToLower(prefix)]) {
			return Unsupported
		}
	}
	return Probably
}

func (p *FFmpegProber) anyOf(set map[string]bool, names []string) bool {
	for _, n := range names {
		if set[n] {
			return true
		}
	}
	return false
}

func listCapabilities(ctx context.Context, ffmpegPath, flag string) ([]string, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", flag)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg %s: %w - %s", flag, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return parseCapabilities(stdout.Bytes()), nil
}

// parseCapabilities reads the name column of `ffmpeg -decoders` or
// `ffmpeg -demuxers` output. Demuxer names may be comma separated.
func parseCapabilities(out []byte) []string {
	var names []string
	started := false

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !started {
			started = strings.HasPrefix(line, "--")
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		names = append(names, strings.Split(fields[1], ",")...)
	}
	return names
}
