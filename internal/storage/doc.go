// Package storage provides JSON-based persistence for event snapshots.
//
// A snapshot is a point-in-time export of the events collection written as one
// JSON file. The export command writes snapshots from the live store; a
// Storage opened on a snapshot implements the pipeline store interface so a
// cleanup can be rehearsed offline, and every write it receives is persisted
// back to the same file.
//
// BSON-only values (object ids, native dates, ordered documents) are converted
// to their JSON equivalents on export: ids become hex strings and dates become
// RFC 3339 strings.
package storage
