// Package export renders request records to JSON or CSV, either from a
// slice or streamed from a storage channel for large result sets.
package export
