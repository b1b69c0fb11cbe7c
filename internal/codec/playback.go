package codec

import (
	"strings"

	"vidshelf/internal/mediatypes"
)

// MediaErrorCode is the code carried by an HTML media element error.
type MediaErrorCode int

const (
	// NoMediaError means the element reported a failure without an error object.
	NoMediaError MediaErrorCode = 0
	// MediaErrAborted means the user agent aborted the fetch.
	MediaErrAborted MediaErrorCode = 1
	// MediaErrNetwork means a network error interrupted the download.
	MediaErrNetwork MediaErrorCode = 2
	// MediaErrDecode means the resource could not be decoded.
	MediaErrDecode MediaErrorCode = 3
	// MediaErrSrcNotSupported means the resource type is not playable.
	MediaErrSrcNotSupported MediaErrorCode = 4
)

// PlaybackError builds the message shown when playback of fileName fails.
func PlaybackError(code MediaErrorCode, fileName string, supports []Support) string {
	rec := Recommend(fileName, supports)

	var msg string
	switch code {
	case NoMediaError:
		msg = "Error playing video."
	case MediaErrAborted:
		msg = "Video playback was aborted."
	case MediaErrNetwork:
		msg = "Network error occurred while loading the video."
	case MediaErrDecode:
		if rec.Likely {
			msg = "Video codec not supported or file is corrupted."
		} else {
			msg = rec.Message + " This format may not be fully supported."
		}
	case MediaErrSrcNotSupported:
		msg = rec.Message
		if rec.Alternative != "" {
			msg += " Consider converting to " + rec.Alternative + " format for better compatibility."
		}
	default:
		msg = "Unknown error occurred while playing video."
	}

	if ext := mediatypes.ExtensionOf(fileName); ext != "" {
		msg += " (" + strings.ToUpper(ext) + " format)"
	}
	return msg
}
