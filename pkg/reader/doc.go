// Package reader turns JSON and YAML documents into validation subjects.
//
// A top-level mapping is one record; a top-level list of mappings is a
// batch. Both encodings decode to the same in-memory shape, with every
// number as float64, so a record validates identically whichever syntax
// it was written in.
package reader
