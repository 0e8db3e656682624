// Package archive keeps a copy of every document a committed run deletes.
//
// The archive is a local SQLite database with one row per deleted document,
// tagged with the run id, the reason codes and the full document as JSON.
// Commits against the events collection are not transactional; the archive
// is how an operator finds and restores what a run removed.
package archive
