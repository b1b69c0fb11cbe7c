// Package codec estimates whether video formats will play in the viewer.
//
// Detect runs a Prober over a fixed table of container/codec MIME types and
// keeps the strongest answer per format ("probably" over "maybe" over
// unsupported). Two probers exist: FFmpegProber derives answers from the
// local ffmpeg build, ReportedProber replays canPlayType answers posted by
// the browser.
//
// The results are advisory. Recommend and PlaybackError turn them into
// user-facing messages; nothing here blocks playback.
package codec
