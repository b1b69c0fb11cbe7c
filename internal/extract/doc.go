// Package extract produces thumbnails and technical metadata for video files.
//
// An Extractor probes each file through a Decoder, captures one frame at
// SeekTarget, draws it onto a Canvas surface sized by ThumbnailSize and
// encodes it as a JPEG data URI. Only the probe stage runs under the
// per-extension load budget; once stream information arrives the budget
// no longer applies.
//
// ProcessAll runs files in batches of workers.DefaultBatchSize. Every input
// yields exactly one media.VideoMetadata; files that fail, time out or are
// never started because the context ended get placeholder records.
//
// Each extraction registers its file in a blob.Registry for the duration of
// the work and revokes the reference on every exit path.
package extract
