package codec

import (
	"reflect"
	"strings"
	"testing"
)

// tableProber answers by substring so tests can target codec families.
type tableProber map[string]Confidence

func (p tableProber) CanPlayType(mimeType string) Confidence {
	for frag, c := range p {
		if strings.Contains(mimeType, frag) {
			return c
		}
	}
	return Unsupported
}

func findSupport(t *testing.T, supports []Support, format string) Support {
	t.Helper()
	for _, s := range supports {
		if s.Format == format {
			return s
		}
	}
	t.Fatalf("format %s missing from results", format)
	return Support{}
}

func TestDetectProbablyDominates(t *testing.T) {
	p := tableProber{
		"avc1.42E01E": Maybe,
		"avc1.64001E": Probably,
		"hev1":        Maybe,
	}

	mp4 := findSupport(t, Detect(p), "MP4")
	if mp4.Confidence != Probably {
		t.Errorf("MP4 confidence = %q, want probably", mp4.Confidence)
	}
	if !mp4.Supported {
		t.Error("MP4 Supported = false")
	}
	// avc1.4D401E reports nothing, so three of four types are listed.
	if len(mp4.Codecs) != 3 {
		t.Errorf("MP4 codecs = %v, want 3 entries", mp4.Codecs)
	}
}

func TestDetectOrderAndUnsupported(t *testing.T) {
	got := Detect(tableProber{})
	var names []string
	for _, s := range got {
		names = append(names, s.Format)
		if s.Supported || s.Confidence != Unsupported || len(s.Codecs) != 0 {
			t.Errorf("%s = %+v, want unsupported", s.Format, s)
		}
	}
	want := []string{"MP4", "WebM", "OGG", "MOV", "AVI", "MKV"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("formats = %v, want %v", names, want)
	}
}

func TestDetectMaybeOnly(t *testing.T) {
	webm := findSupport(t, Detect(tableProber{"vp9": Maybe}), "WebM")
	if webm.Confidence != Maybe || !webm.Supported {
		t.Errorf("WebM = %+v, want maybe/supported", webm)
	}
}

func TestInfo(t *testing.T) {
	supports := Detect(tableProber{
		"video/mp4":  Probably,
		"video/webm": Maybe,
	})

	info := Info("test-agent", supports)
	if info.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %q", info.UserAgent)
	}
	if !reflect.DeepEqual(info.SupportedFormats, []string{"MP4", "WebM"}) {
		t.Errorf("SupportedFormats = %v", info.SupportedFormats)
	}
	if !reflect.DeepEqual(info.RecommendedFormats, []string{"MP4"}) {
		t.Errorf("RecommendedFormats = %v", info.RecommendedFormats)
	}
}

func TestRecommend(t *testing.T) {
	supports := Detect(tableProber{
		"video/webm":      Probably,
		"video/quicktime": Maybe,
	})

	tests := []struct {
		name string
		file string
		want Recommendation
	}{
		{
			name: "well supported",
			file: "clip.webm",
			want: Recommendation{Likely: true, Message: "WebM format is well supported by your browser."},
		},
		{
			name: "partial support",
			file: "clip.MOV",
			want: Recommendation{Likely: true, Message: "MOV format has partial support. Playback may work but isn't guaranteed.", Alternative: "MP4"},
		},
		{
			name: "not supported suggests best format",
			file: "clip.mkv",
			want: Recommendation{Message: "MKV format is not supported by your browser.", Alternative: "WebM"},
		},
		{
			name: "format outside probe table",
			file: "clip.flv",
			want: Recommendation{Message: "FLV format may not be supported by your browser.", Alternative: "MP4"},
		},
		{
			name: "unknown extension",
			file: "clip.rmvb",
			want: Recommendation{Message: "Unknown format: RMVB. Browser support uncertain.", Alternative: "MP4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recommend(tt.file, supports); got != tt.want {
				t.Errorf("Recommend(%q) = %+v, want %+v", tt.file, got, tt.want)
			}
		})
	}
}

func TestRecommendFallsBackToMP4(t *testing.T) {
	got := Recommend("clip.avi", Detect(tableProber{}))
	if got.Likely || got.Alternative != "MP4" {
		t.Errorf("Recommend() = %+v, want unlikely with MP4 alternative", got)
	}
}

func TestPlaybackError(t *testing.T) {
	supports := Detect(tableProber{"video/mp4": Probably})

	tests := []struct {
		name string
		code MediaErrorCode
		file string
		want string
	}{
		{"no error object", NoMediaError, "a.mp4", "Error playing video. (MP4 format)"},
		{"aborted", MediaErrAborted, "a.mp4", "Video playback was aborted. (MP4 format)"},
		{"network", MediaErrNetwork, "a.mp4", "Network error occurred while loading the video. (MP4 format)"},
		{"decode likely", MediaErrDecode, "a.mp4", "Video codec not supported or file is corrupted. (MP4 format)"},
		{
			"decode unlikely", MediaErrDecode, "a.avi",
			"AVI format is not supported by your browser. This format may not be fully supported. (AVI format)",
		},
		{
			"source not supported", MediaErrSrcNotSupported, "a.mkv",
			"MKV format is not supported by your browser. Consider converting to MP4 format for better compatibility. (MKV format)",
		},
		{"source supported", MediaErrSrcNotSupported, "a.mp4", "MP4 format is well supported by your browser. (MP4 format)"},
		{"unknown code", MediaErrorCode(9), "a.mp4", "Unknown error occurred while playing video. (MP4 format)"},
		{"no extension", MediaErrAborted, "video", "Video playback was aborted."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlaybackError(tt.code, tt.file, supports); got != tt.want {
				t.Errorf("PlaybackError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseConfidence(t *testing.T) {
	tests := map[string]Confidence{
		"probably": Probably,
		"MAYBE":    Maybe,
		"":         Unsupported,
		"no":       Unsupported,
	}
	for in, want := range tests {
		if got := ParseConfidence(in); got != want {
			t.Errorf("ParseConfidence(%q) = %q, want %q", in, got, want)
		}
	}
}
