// Package store holds the in-memory state of an open library: the scanned
// videos, the active filter, the playlist and the recently played list.
//
// Nothing here is persisted. Opening another folder replaces the videos;
// the playlist and recently played list survive until the process exits.
package store
