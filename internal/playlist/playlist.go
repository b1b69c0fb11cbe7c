package playlist

import (
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"vidshelf/internal/media"
	"vidshelf/internal/startup"
)

// Format is a playlist file format.
type Format string

const (
	FormatM3U Format = "m3u"
	FormatWPL Format = "wpl"
)

// ErrUnknownFormat is returned for formats other than m3u and wpl.
var ErrUnknownFormat = errors.New("unknown playlist format")

var generator = "vidshelf -- " + startup.Version

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "m3u", "m3u8":
		return FormatM3U, nil
	case "wpl":
		return FormatWPL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatWPL {
		return "application/vnd.ms-wpl"
	}
	return "audio/x-mpegurl"
}

// Playlist is a parsed playlist file.
type Playlist struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item is one playlist entry as written in the file.
type Item struct {
	Name     string `json:"name"`
	OrigPath string `json:"origPath"`
}

func newItem(src string) Item {
	// Handle Windows paths
	clean := strings.ReplaceAll(src, "\\", "/")
	return Item{Name: path.Base(clean), OrigPath: src}
}

// Parse reads a playlist in format f.
func Parse(r io.Reader, f Format, fallbackName string) (*Playlist, error) {
	switch f {
	case FormatM3U:
		return ParseM3U(r, fallbackName)
	case FormatWPL:
		return ParseWPL(r, fallbackName)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Write writes videos as a playlist in format f.
func Write(w io.Writer, f Format, title string, videos []media.VideoMetadata) error {
	switch f {
	case FormatM3U:
		return WriteM3U(w, title, videos)
	case FormatWPL:
		return WriteWPL(w, title, videos)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Resolve matches playlist items against the library. An item matches a
// video with the same path, otherwise the first video with the same file
// name. Unmatched items are returned by their original path.
func Resolve(pl *Playlist, videos []media.VideoMetadata) (matched []media.VideoMetadata, missing []string) {
	byPath := make(map[string]media.VideoMetadata, len(videos))
	byName := make(map[string]media.VideoMetadata, len(videos))
	for _, v := range videos {
		byPath[filepath.Clean(v.File.Path)] = v
		if _, ok := byName[v.File.Name]; !ok {
			byName[v.File.Name] = v
		}
	}

	for _, item := range pl.Items {
		if v, ok := byPath[filepath.Clean(item.OrigPath)]; ok {
			matched = append(matched, v)
			continue
		}
		if v, ok := byName[item.Name]; ok {
			matched = append(matched, v)
			continue
		}
		missing = append(missing, item.OrigPath)
	}
	return matched, missing
}
