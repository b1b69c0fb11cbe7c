package playlist

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"vidshelf/internal/media"
)

const m3uHeader = "#EXTM3U"

// ParseM3U reads an M3U or M3U8 playlist. Comment and directive lines other
// than #PLAYLIST are ignored.
func ParseM3U(r io.Reader, fallbackName string) (*Playlist, error) {
	pl := &Playlist{Name: fallbackName}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		switch {
		case line == "":
		case strings.HasPrefix(line, "#PLAYLIST:"):
			if name := strings.TrimSpace(strings.TrimPrefix(line, "#PLAYLIST:")); name != "" {
				pl.Name = name
			}
		case strings.HasPrefix(line, "#"):
		default:
			pl.Items = append(pl.Items, newItem(line))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read m3u: %w", err)
	}
	return pl, nil
}

// WriteM3U writes videos as an extended M3U playlist.
func WriteM3U(w io.Writer, title string, videos []media.VideoMetadata) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, m3uHeader)
	if title != "" {
		fmt.Fprintf(bw, "#PLAYLIST:%s\n", title)
	}
	for _, v := range videos {
		duration := -1
		if v.Meta.Duration > 0 {
			duration = int(math.Round(v.Meta.Duration))
		}
		name := v.File.Title
		if name == "" {
			name = v.File.Name
		}
		fmt.Fprintf(bw, "#EXTINF:%d,%s\n%s\n", duration, name, v.File.Path)
	}
	return bw.Flush()
}
