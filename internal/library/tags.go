package library

import (
	"strings"

	"vidshelf/internal/logging"

	"github.com/dhowden/tag"
	"github.com/spf13/afero"
)

// TitleReader returns the embedded title of a file, or "" when none is found.
type TitleReader interface {
	Title(path, ext string) string
}

// taggedExtensions are the containers dhowden/tag can read titles from.
var taggedExtensions = map[string]bool{
	"mp4": true,
	"m4v": true,
	"mov": true,
	"3gp": true,
}

// TagTitleReader reads MP4-family atoms with dhowden/tag.
type TagTitleReader struct {
	fs afero.Fs
}

// NewTagTitleReader creates a TagTitleReader over fs.
func NewTagTitleReader(fs afero.Fs) *TagTitleReader {
	return &TagTitleReader{fs: fs}
}

// Title implements TitleReader. Unreadable or untagged files return "".
func (r *TagTitleReader) Title(path, ext string) string {
	if !taggedExtensions[ext] {
		return ""
	}

	f, err := r.fs.Open(path)
	if err != nil {
		return ""
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Debug("failed to close %s: %v", path, err)
		}
	}()

	// Atoms only: ReadFrom falls back to an ID3v1 trailer seek that some
	// filesystems reject on files shorter than the trailer.
	meta, err := tag.ReadAtoms(f)
	if err != nil || meta == nil {
		return ""
	}
	return strings.TrimSpace(meta.Title())
}
