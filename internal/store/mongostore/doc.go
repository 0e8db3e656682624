// Package mongostore implements the pipeline store on a MongoDB collection.
//
// Records are read with a single unfiltered find and decoded into generic
// documents so that every historical shape of the events collection survives
// decoding. Ids are rendered as hex strings for ObjectIDs and verbatim for
// string ids; the original _id value is kept so deletes and updates address
// the document with its stored type.
package mongostore
