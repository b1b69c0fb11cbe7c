package codec

import (
	"reflect"
	"testing"
)

const decodersOutput = `Decoders:
 V..... = Video
 A..... = Audio
 ------
 V....D h264                 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10
 V....D vp9                  Google VP9
 V....D libdav1d             dav1d AV1 decoder by VideoLAN and VLC
 A....D aac                  AAC (Advanced Audio Coding)
 A....D opus                 Opus
`

const demuxersOutput = `File formats:
 D. = Demuxing supported
 .E = Muxing supported
 --
 D  avi             AVI (Audio Video Interleaved)
 D  matroska,webm   Matroska / WebM
 D  mov,mp4,m4a,3gp,3g2,mj2 QuickTime / MOV
`

func TestParseCapabilities(t *testing.T) {
	got := parseCapabilities([]byte(decodersOutput))
	want := []string{"h264", "vp9", "libdav1d", "aac", "opus"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("decoders = %v, want %v", got, want)
	}

	got = parseCapabilities([]byte(demuxersOutput))
	want = []string{"avi", "matroska", "webm", "mov", "mp4", "m4a", "3gp", "3g2", "mj2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("demuxers = %v, want %v", got, want)
	}
}

func TestFFmpegProber(t *testing.T) {
	p := NewStaticFFmpegProber(
		parseCapabilities([]byte(decodersOutput)),
		parseCapabilities([]byte(demuxersOutput)),
	)

	tests := []struct {
		mime string
		want Confidence
	}{
		{`video/mp4; codecs="avc1.42E01E, mp4a.40.2"`, Probably},
		{`video/mp4; codecs="hev1.1.6.L93.B0, mp4a.40.2"`, Unsupported},
		{`video/webm; codecs="vp9, opus"`, Probably},
		{`video/webm; codecs="vp8, vorbis"`, Unsupported},
		{`video/webm; codecs="av01.0.04M.08, opus"`, Probably},
		{`video/ogg; codecs="theora, vorbis"`, Unsupported},
		{"video/x-msvideo", Maybe},
		{`video/x-matroska; codecs="avc1.42E01E, mp4a.40.2"`, Probably},
		{"not a mime type;;", Unsupported},
	}

	for _, tt := range tests {
		if got := p.CanPlayType(tt.mime); got != tt.want {
			t.Errorf("CanPlayType(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestReportedProber(t *testing.T) {
	p := NewReportedProber(map[string]string{
		`video/webm; codecs="vp9, opus"`: "probably",
		"video/x-msvideo":                "maybe",
		"video/ogg":                      "no",
	})

	if got := p.CanPlayType(`video/webm; codecs="vp9, opus"`); got != Probably {
		t.Errorf("reported webm = %q, want probably", got)
	}
	if got := p.CanPlayType("video/x-msvideo"); got != Maybe {
		t.Errorf("reported avi = %q, want maybe", got)
	}
	if got := p.CanPlayType("video/ogg"); got != Unsupported {
		t.Errorf("reported ogg = %q, want unsupported", got)
	}
	if got := p.CanPlayType("video/mp4"); got != Unsupported {
		t.Errorf("unreported mp4 = %q, want unsupported", got)
	}
}
