// Package report turns a pipeline plan into a summary and writes it as text or JSON.
//
// A Summary counts records per reason code (a record with several reasons is
// counted once per reason), totals the keep, delete, duplicate and fix
// buckets, keeps the first N samples of each bucket and, for committed runs,
// the before and after collection counts.
package report
