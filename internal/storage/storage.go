// Package storage holds the in-memory keyspace.
//
// Every key maps to exactly one Value variant (string, list, set or hash) and may carry an
// absolute expiration deadline. Expiration is lazy: nothing sweeps the keyspace in the
// background, instead CheckAndEvict must be called for a key before it is read or written.
// Keys that expire and are never addressed again stay resident until then.
package storage
