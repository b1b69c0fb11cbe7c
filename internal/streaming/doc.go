// Package streaming serves file bodies with protection against slow or
// stalled clients.
//
// [Writer] wraps an http.ResponseWriter and bounds every write by
// Config.WriteTimeout, ends the stream after Config.IdleTimeout without
// progress, and splits large writes into Config.ChunkSize pieces so a
// disconnect is noticed between chunks. [ServeContent] combines it with
// http.ServeContent, which is how blob references are played back with
// Range support.
//
//	streaming.ServeContent(w, r, name, modTime, file, streaming.DefaultConfig())
package streaming
