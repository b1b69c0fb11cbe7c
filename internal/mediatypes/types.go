package mediatypes

import (
	"strings"
	"time"
)

// SortField specifies which field a library listing is sorted by.
type SortField string

const (
	// SortByName sorts by file name, ascending and case-insensitive.
	SortByName SortField = "name"
	// SortByDate sorts by modification time, newest first.
	SortByDate SortField = "date"
	// SortBySize sorts by file size, largest first.
	SortBySize SortField = "size"
	// SortByDuration sorts by extracted duration, longest first.
	SortByDuration SortField = "duration"
)

// ParseSortField returns the SortField for s, defaulting to SortByName.
func ParseSortField(s string) SortField {
	switch SortField(strings.ToLower(strings.TrimSpace(s))) {
	case SortByDate:
		return SortByDate
	case SortBySize:
		return SortBySize
	case SortByDuration:
		return SortByDuration
	default:
		return SortByName
	}
}

// VideoExtensions is the allow-list of video container/codec extensions
// (lower-case, without the leading dot) that the library scanner accepts.
var VideoExtensions = map[string]bool{
	// Common containers
	"mp4": true, "mov": true, "avi": true, "mkv": true,
	"webm": true, "ogg": true, "flv": true, "wmv": true,

	// MPEG family
	"m4v": true, "mpg": true, "mpeg": true, "mp2": true,
	"m2v": true, "mpe": true, "mpv": true, "mp2v": true,

	// Mobile and Flash
	"3gp": true, "3g2": true, "f4v": true, "f4p": true,
	"f4a": true, "f4b": true,

	// Windows Media
	"asf": true, "wma": true, "wm": true,

	// QuickTime
	"qt": true, "qtz": true, "qtl": true,

	// RealMedia
	"rm": true, "rmvb": true, "ra": true, "ram": true,

	// Ogg
	"ogv": true, "ogm": true, "ogx": true,

	// DivX / DVD
	"divx": true, "xvid": true, "vob": true, "ifo": true, "bup": true,

	// Transport streams
	"ts": true, "m2ts": true, "mts": true, "mt2s": true,
	"trp": true, "m2t": true,

	// Professional and camera formats
	"mxf": true, "r3d": true, "gxf": true, "mod": true,
	"tod": true, "dv": true, "hdv": true, "rec": true,

	// Miscellaneous
	"nsv": true, "swf": true, "yuv": true, "y4m": true,
	"amv": true, "roq": true, "dsm": true, "dsv": true,
	"dsa": true, "dss": true, "ivf": true, "nut": true,
	"film": true, "cpk": true, "fli": true, "flc": true,
	"dpg": true, "smi": true, "smil": true,
}

// SlowExtensions lists formats that are slower or less reliable to decode and
// therefore get the longer extraction budget.
var SlowExtensions = map[string]bool{
	"mkv": true,
	"avi": true,
	"flv": true,
	"wmv": true,
	"mxf": true,
}

const (
	// DefaultLoadTimeout is the extraction load budget for most formats.
	DefaultLoadTimeout = 10 * time.Second
	// SlowLoadTimeout is the extraction load budget for SlowExtensions.
	SlowLoadTimeout = 15 * time.Second
)

// MimeTypes maps extensions to the MIME types served for playback.
var MimeTypes = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"ogg":  "video/ogg",
	"ogv":  "video/ogg",
	"mov":  "video/quicktime",
	"qt":   "video/quicktime",
	"avi":  "video/x-msvideo",
	"wmv":  "video/x-ms-wmv",
	"asf":  "video/x-ms-asf",
	"flv":  "video/x-flv",
	"f4v":  "video/x-f4v",
	"mkv":  "video/x-matroska",
	"3gp":  "video/3gpp",
	"3g2":  "video/3gpp2",
	"m4v":  "video/x-m4v",
	"mpg":  "video/mpeg",
	"mpeg": "video/mpeg",
	"ts":   "video/mp2t",
	"m2ts": "video/mp2t",
	"mts":  "video/mp2t",
	"mxf":  "application/mxf",
}

// ExtensionOf returns the lower-cased substring after the final '.' of name,
// or "" when name has no dot.
func ExtensionOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// IsVideoFile reports whether name carries an allow-listed video extension.
func IsVideoFile(name string) bool {
	return VideoExtensions[ExtensionOf(name)]
}

// LoadTimeout returns the extraction load budget for an extension.
func LoadTimeout(ext string) time.Duration {
	if SlowExtensions[strings.ToLower(ext)] {
		return SlowLoadTimeout
	}
	return DefaultLoadTimeout
}

// GetMimeType returns the MIME type for an extension (without dot).
// Unknown video extensions map to "video/*".
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "video/*"
}
