// Package playlist reads and writes playlist files for the in-memory playlist.
//
// Supported formats:
//   - M3U/M3U8: extended M3U with #EXTINF durations and an optional #PLAYLIST name
//   - WPL (Windows Playlist): XML-based playlist format used by Windows Media Player
//
// Imported entries are resolved against the open library by full path and
// then by file name, so playlists written on another machine (including
// Windows paths such as C:\Videos\clip.mp4) still match when the same files
// are in the open folder.
package playlist
