package storage

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
)

// BadgerStore keeps Data wires in a badger database, keyed by the
// encoded name components.
type BadgerStore struct {
	db *badger.DB
	tx *badger.Txn
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Get(name enc.Name, prefix bool) (wire []byte, err error) {
	if s.tx != nil {
		panic("Get() called within a write transaction")
	}

	key := nameKey(name)
	err = s.db.View(func(txn *badger.Txn) error {
		if !prefix {
			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			} else if err != nil {
				return err
			}
			wire, err = item.ValueCopy(nil)
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Reverse = true // newest first
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append(key, 0xFF))
		if !it.ValidForPrefix(key) {
			return nil
		}
		wire, err = it.Item().ValueCopy(nil)
		return err
	})
	return
}

func (s *BadgerStore) Put(name enc.Name, wire []byte) error {
	key := nameKey(name)
	return s.update(func(txn *badger.Txn) error {
		return txn.Set(key, wire)
	})
}

func (s *BadgerStore) Remove(name enc.Name) error {
	key := nameKey(name)
	return s.update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (s *BadgerStore) RemovePrefix(prefix enc.Name) error {
	keyPfx := nameKey(prefix)
	return s.update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // keys only
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(keyPfx); it.ValidForPrefix(keyPfx); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) Begin() (ndn.Store, error) {
	if s.tx != nil {
		panic("Begin() called within a write transaction")
	}
	return &BadgerStore{db: s.db, tx: s.db.NewTransaction(true)}, nil
}

func (s *BadgerStore) Commit() error {
	if s.tx == nil {
		panic("Commit() called without a write transaction")
	}
	return s.tx.Commit()
}

func (s *BadgerStore) Rollback() error {
	if s.tx == nil {
		panic("Rollback() called without a write transaction")
	}
	s.tx.Discard()
	return nil
}

// nameKey is the Name TLV value, so that a name prefix is a key prefix.
func nameKey(name enc.Name) []byte {
	buf := make([]byte, name.EncodingLength())
	name.EncodeInto(buf)
	return buf
}

func (s *BadgerStore) update(f func(tx *badger.Txn) error) error {
	if s.tx != nil {
		return f(s.tx)
	}
	return s.db.Update(f)
}
