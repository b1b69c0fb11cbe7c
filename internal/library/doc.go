// Package library opens video folders and keeps the store in sync with them.
//
// A FolderPicker chooses the folder, the Scanner lists the playable files
// directly inside it (no recursion, extension allow-list from
// mediatypes, dot-files included), and the Service hands the files to the
// extractor and loads the records into the store.
//
// Only one scan runs at a time. With watching enabled, changes to video
// files in the open folder trigger a debounced re-scan.
package library
