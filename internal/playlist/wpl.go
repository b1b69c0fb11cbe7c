package playlist

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"vidshelf/internal/media"
)

// WPL structure based on Windows Media Player playlist format
type WPL struct {
	XMLName xml.Name `xml:"smil"`
	Head    WPLHead  `xml:"head"`
	Body    WPLBody  `xml:"body"`
}

type WPLHead struct {
	Meta  []WPLMeta `xml:"meta"`
	Title string    `xml:"title"`
}

type WPLMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type WPLBody struct {
	Seq WPLSeq `xml:"seq"`
}

type WPLSeq struct {
	Media []WPLMedia `xml:"media"`
}

type WPLMedia struct {
	Src string `xml:"src,attr"`
}

// ParseWPL reads a Windows Media Player playlist.
func ParseWPL(r io.Reader, fallbackName string) (*Playlist, error) {
	var wpl WPL
	if err := xml.NewDecoder(r).Decode(&wpl); err != nil {
		return nil, fmt.Errorf("decode wpl: %w", err)
	}

	pl := &Playlist{Name: wpl.Head.Title}
	if pl.Name == "" {
		pl.Name = fallbackName
	}
	for _, m := range wpl.Body.Seq.Media {
		if m.Src == "" {
			continue
		}
		pl.Items = append(pl.Items, newItem(m.Src))
	}
	return pl, nil
}

// WriteWPL writes videos as a Windows Media Player playlist.
func WriteWPL(w io.Writer, title string, videos []media.VideoMetadata) error {
	wpl := WPL{
		Head: WPLHead{
			Meta: []WPLMeta{
				{Name: "Generator", Content: generator},
				{Name: "ItemCount", Content: strconv.Itoa(len(videos))},
			},
			Title: title,
		},
	}
	for _, v := range videos {
		wpl.Body.Seq.Media = append(wpl.Body.Seq.Media, WPLMedia{Src: v.File.Path})
	}

	if _, err := io.WriteString(w, "<?wpl version=\"1.0\"?>\n"); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(wpl); err != nil {
		return fmt.Errorf("encode wpl: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
