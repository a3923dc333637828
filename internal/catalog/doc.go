// Package catalog stores the course catalog in a single JSON flat file.
//
// The file holds one pretty-printed JSON array of course records. Every
// read loads the whole file; every save rewrites the whole file with the
// new record appended. There is no file locking: two concurrent saves
// race and the last writer wins, dropping the other's record. The store
// is intended for single-writer deployments; an optional ristretto read
// cache keeps repeated catalog loads off the disk.
package catalog
