package media

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"vidshelf/internal/mediatypes"
)

// UnknownResolution is reported for files whose metadata could not be read.
const UnknownResolution = "Unknown"

// MediaFile is a playable file discovered in the library folder.
type MediaFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	Ext     string    `json:"ext"`
	Title   string    `json:"title,omitempty"`
}

// ID returns a stable identifier derived from the file path.
func (f MediaFile) ID() string {
	sum := md5.Sum([]byte(f.Path))
	return hex.EncodeToString(sum[:])
}

// Meta holds the technical details extracted from a video.
type Meta struct {
	Duration   float64 `json:"duration"`
	Resolution string  `json:"resolution"`
	Created    int64   `json:"created"`
	Size       int64   `json:"size"`
}

// VideoMetadata is the library record for one scanned file.
type VideoMetadata struct {
	ID        string    `json:"id"`
	File      MediaFile `json:"file"`
	Thumbnail string    `json:"thumbnail"`
	Meta      Meta      `json:"metadata"`
	Error     string    `json:"error,omitempty"`
}

// IsPlaceholder reports whether v was produced without successful extraction.
func (v VideoMetadata) IsPlaceholder() bool {
	return v.Thumbnail == "" && v.Meta.Resolution == UnknownResolution
}

// Placeholder builds the record used when extraction fails or never runs.
func Placeholder(f MediaFile, cause error) VideoMetadata {
	v := VideoMetadata{
		ID:   f.ID(),
		File: f,
		Meta: Meta{
			Duration:   0,
			Resolution: UnknownResolution,
			Created:    f.ModTime.UnixMilli(),
			Size:       f.Size,
		},
	}
	if cause != nil {
		v.Error = cause.Error()
	}
	return v
}

// Quality selects the thumbnail tier.
type Quality string

const (
	// QualityLow renders thumbnails up to 320px wide.
	QualityLow Quality = "low"
	// QualityMedium renders thumbnails up to 480px wide.
	QualityMedium Quality = "medium"
	// QualityHigh renders thumbnails up to 640px wide.
	QualityHigh Quality = "high"
)

// ParseQuality returns the tier named by s, defaulting to QualityMedium.
func ParseQuality(s string) (Quality, bool) {
	switch q := Quality(strings.ToLower(strings.TrimSpace(s))); q {
	case QualityLow, QualityMedium, QualityHigh:
		return q, true
	default:
		return QualityMedium, false
	}
}

// Width returns the maximum thumbnail width for the tier.
func (q Quality) Width() int {
	switch q {
	case QualityLow:
		return 320
	case QualityHigh:
		return 640
	default:
		return 480
	}
}

// JPEGQuality returns the encoder quality (1-100) for the tier.
func (q Quality) JPEGQuality() int {
	switch q {
	case QualityLow:
		return 60
	case QualityHigh:
		return 85
	default:
		return 75
	}
}

// FilterOptions narrows and orders the library view.
type FilterOptions struct {
	Search string               `json:"search"`
	SortBy mediatypes.SortField `json:"sortBy"`
	Format string               `json:"format"`
}

// AllFormats matches every extension in FilterOptions.Format.
const AllFormats = "all"
