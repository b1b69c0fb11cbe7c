package codec

import (
	"fmt"
	"strings"

	"vidshelf/internal/mediatypes"
)

// Confidence is a playback-support answer in the canPlayType vocabulary.
type Confidence string

const (
	// Probably means the type is expected to play.
	Probably Confidence = "probably"
	// Maybe means the type might play.
	Maybe Confidence = "maybe"
	// Unsupported means the type will not play.
	Unsupported Confidence = ""
)

// rank orders confidences so comparisons pick the strongest.
func (c Confidence) rank() int {
	switch c {
	case Probably:
		return 2
	case Maybe:
		return 1
	default:
		return 0
	}
}

// ParseConfidence maps a reported string onto a Confidence.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case Probably:
		return Probably
	case Maybe:
		return Maybe
	default:
		return Unsupported
	}
}

// Prober answers whether a MIME type (with optional codecs parameter) plays.
type Prober interface {
	CanPlayType(mimeType string) Confidence
}

// Format is a container family and the MIME types probed for it.
type Format struct {
	Name      string
	MimeTypes []string
}

// Formats is the probe table, in reporting order.
var Formats = []Format{
	{
		Name: "MP4",
		MimeTypes: []string{
			`video/mp4; codecs="avc1.42E01E, mp4a.40.2"`,
			`video/mp4; codecs="avc1.4D401E, mp4a.40.2"`,
			`video/mp4; codecs="avc1.64001E, mp4a.40.2"`,
			`video/mp4; codecs="hev1.1.6.L93.B0, mp4a.40.2"`,
		},
	},
	{
		Name: "WebM",
		MimeTypes: []string{
			`video/webm; codecs="vp8, vorbis"`,
			`video/webm; codecs="vp9, opus"`,
			`video/webm; codecs="av01.0.04M.08, opus"`,
		},
	},
	{
		Name:      "OGG",
		MimeTypes: []string{`video/ogg; codecs="theora, vorbis"`},
	},
	{
		Name:      "MOV",
		MimeTypes: []string{`video/quicktime; codecs="avc1.42E01E, mp4a.40.2"`},
	},
	{
		Name:      "AVI",
		MimeTypes: []string{"video/x-msvideo"},
	},
	{
		Name:      "MKV",
		MimeTypes: []string{`video/x-matroska; codecs="avc1.42E01E, mp4a.40.2"`},
	},
}

// extensionFormats maps file extensions to Format names.
var extensionFormats = map[string]string{
	"mp4":  "MP4",
	"m4v":  "MP4",
	"webm": "WebM",
	"ogv":  "OGG",
	"ogg":  "OGG",
	"mov":  "MOV",
	"qt":   "MOV",
	"avi":  "AVI",
	"mkv":  "MKV",
	"flv":  "FLV",
	"wmv":  "WMV",
}

// Support is the probe result for one Format.
type Support struct {
	Format     string     `json:"format"`
	Codecs     []string   `json:"codecs"`
	Supported  bool       `json:"supported"`
	Confidence Confidence `json:"confidence"`
}

// Detect probes every Format. Confidence is the best answer across the
// format's MIME types; Codecs lists those that reported any support.
func Detect(p Prober) []Support {
	results := make([]Support, 0, len(Formats))
	for _, f := range Formats {
		best := Unsupported
		codecs := []string{}
		for _, mt := range f.MimeTypes {
			c := p.CanPlayType(mt)
			if c == Unsupported {
				continue
			}
			if c.rank() > best.rank() {
				best = c
			}
			codecs = append(codecs, mt)
		}
		results = append(results, Support{
			Format:     f.Name,
			Codecs:     codecs,
			Supported:  best != Unsupported,
			Confidence: best,
		})
	}
	return results
}

// BrowserInfo summarises Detect for display.
type BrowserInfo struct {
	UserAgent          string   `json:"userAgent"`
	SupportedFormats   []string `json:"supportedFormats"`
	RecommendedFormats []string `json:"recommendedFormats"`
}

// Info lists the supported formats and the subset that probably play.
func Info(userAgent string, supports []Support) BrowserInfo {
	info := BrowserInfo{
		UserAgent:          userAgent,
		SupportedFormats:   []string{},
		RecommendedFormats: []string{},
	}
	for _, s := range supports {
		if s.Supported {
			info.SupportedFormats = append(info.SupportedFormats, s.Format)
		}
		if s.Confidence == Probably {
			info.RecommendedFormats = append(info.RecommendedFormats, s.Format)
		}
	}
	return info
}

// Recommendation is advice on whether a file is likely to play.
type Recommendation struct {
	Likely      bool   `json:"likely"`
	Message     string `json:"message"`
	Alternative string `json:"alternative,omitempty"`
}

// Recommend advises on fileName given the detected support.
func Recommend(fileName string, supports []Support) Recommendation {
	ext := mediatypes.ExtensionOf(fileName)

	format, ok := extensionFormats[ext]
	if !ok {
		return Recommendation{
			Message:     fmt.Sprintf("Unknown format: %s. Browser support uncertain.", strings.ToUpper(ext)),
			Alternative: "MP4",
		}
	}

	var found *Support
	for i := range supports {
		if supports[i].Format == format {
			found = &supports[i]
			break
		}
	}
	if found == nil {
		return Recommendation{
			Message:     fmt.Sprintf("%s format may not be supported by your browser.", format),
			Alternative: "MP4",
		}
	}

	switch found.Confidence {
	case Probably:
		return Recommendation{
			Likely:  true,
			Message: fmt.Sprintf("%s format is well supported by your browser.", format),
		}
	case Maybe:
		return Recommendation{
			Likely:      true,
			Message:     fmt.Sprintf("%s format has partial support. Playback may work but isn't guaranteed.", format),
			Alternative: "MP4",
		}
	}

	alternative := "MP4"
	for _, s := range supports {
		if s.Confidence == Probably {
			alternative = s.Format
			break
		}
	}
	return Recommendation{
		Message:     fmt.Sprintf("%s format is not supported by your browser.", format),
		Alternative: alternative,
	}
}
