// Package cli implements the command-line interface for aqua-events.
//
// The cli package provides the Cobra-based commands: clean runs the
// data-quality pipeline against MongoDB or a local snapshot, export writes a
// snapshot of the live collection, diff compares two snapshots, history lists
// what earlier runs archived and profiles shows the available rule profiles.
// It wires configuration, stores, the pipeline, the reporter, the archive and
// run metrics together.
package cli
