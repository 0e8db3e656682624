// Package event provides the event record model read from the events collection
// and the field normalizer that turns a semi-structured document into a flat view.
//
// Documents come from two producers (scrapers and user submissions) and over time
// have been stored in more than one shape: titles are either a language mapping
// ({"es": ..., "en": ...}) or a bare legacy string, and dates are either ISO-8601
// strings or native BSON dates. FromDocument accepts every known shape and
// Normalize derives the scalar values the data-quality rules run against.
package event
