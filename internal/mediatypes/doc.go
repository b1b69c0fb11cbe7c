// Package mediatypes provides shared type definitions and utilities for video
// file handling across vidshelf.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains primitive types,
// constants, and pure utility functions.
//
// # Extension Detection
//
// Extensions are the substring after the final '.' of a file name, compared
// case-insensitively and stored without the dot:
//
//	ext := mediatypes.ExtensionOf("Holiday.MKV") // "mkv"
//	if mediatypes.VideoExtensions[ext] {
//	    // File is a supported video
//	}
//
// # Load Budgets
//
// LoadTimeout returns the extraction budget for an extension. Formats in
// SlowExtensions (mkv, avi, flv, wmv, mxf) get 15 seconds, everything else 10.
//
// # MIME Types
//
// GetMimeType returns the Content-Type used when a file is served for playback:
//
//	mimeType := mediatypes.GetMimeType("mp4") // "video/mp4"
package mediatypes
