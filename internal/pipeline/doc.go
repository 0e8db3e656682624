// Package pipeline runs one data-quality pass over the events collection.
//
// A Runner reads every record once, classifies it, plans field corrections,
// groups duplicates among the records that survive classification and builds a
// Plan. In dry-run mode the Plan is the only output. In commit mode the Runner
// waits on a Gate, optionally archives the documents about to be deleted, issues
// a single delete for the whole id set, applies the corrections of surviving
// records one by one and finally re-counts the collection.
//
// Writes are not transactional. A failure part way through leaves earlier
// writes in place; the archive is the recovery path.
//
// State transitions:
//
//	Idle -> Analyzing -> DryRunReport -> Done
//	Idle -> Analyzing -> Committing -> Verifying -> Done
//	any  -> Failed
package pipeline
