package ndn

import enc "github.com/named-data/ndn-cpp-sub004/std/encoding"

// Store keeps encoded Data packets by name.
type Store interface {
	// Get returns the Data wire of the given name. With prefix set, the
	// lexicographically last Data under name is returned.
	// A miss returns nil without error.
	Get(name enc.Name, prefix bool) ([]byte, error)
	// Put inserts or replaces a Data wire.
	Put(name enc.Name, wire []byte) error
	// Remove removes a single Data wire.
	Remove(name enc.Name) error
	// RemovePrefix removes every Data wire under the prefix.
	RemovePrefix(prefix enc.Name) error

	// Begin starts a write transaction. Puts on the returned Store become
	// visible together on Commit. Get must not be called on it.
	Begin() (Store, error)
	Commit() error
	Rollback() error
}
