package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCache stores entries in an embedded BadgerDB using native key
// expiry. It suits a long-running server on a single host.
type BadgerCache struct {
	db *badger.DB
}

// NewBadgerCache opens a BadgerDB in dir. An empty dir opens an in-memory
// database whose contents are lost on Close.
func NewBadgerCache(dir string) (*BadgerCache, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

// Get retrieves a value. Expired keys are invisible to badger reads.
func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value. A ttl <= 0 stores it without expiry.
func (c *BadgerCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes a key.
func (c *BadgerCache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

// Ensure BadgerCache implements Cache.
var _ Cache = (*BadgerCache)(nil)
