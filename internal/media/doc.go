// Package media defines the records shared by the scanner, the extractor,
// the store and the HTTP handlers.
//
// A MediaFile is a playable file found in the open folder. Extraction turns
// it into a VideoMetadata holding a JPEG data-URI thumbnail and technical
// metadata. When extraction fails or times out the record is a Placeholder:
// no thumbnail, zero duration, resolution "Unknown", and the file's own
// size and modification time.
//
// Quality selects the thumbnail tier (low 320px/q60, medium 480px/q75,
// high 640px/q85). FilterOptions carries the search, format and sort state
// of the library view.
package media
