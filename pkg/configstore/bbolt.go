package configstore

import (
	"context"

	"github.com/vaultsync/core/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// bucketConfig is the single bbolt bucket holding all key-value pairs,
// named the way the teacher names its upload/download session buckets.
var bucketConfig = []byte("config")

// BoltStore is a go.etcd.io/bbolt-backed persistent Store, grounded on the
// teacher's upload/download manager db.Batch/bucket idioms.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if absent) the config bucket in db.
func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketConfig)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating config bucket")
	}
	return &BoltStore{db: db}, nil
}

// Get returns the persisted value for key, if any.
func (s *BoltStore) Get(_ context.Context, key string) (string, bool, error) {
	var value string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketConfig)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(key))
		if v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, errors.Wrap(err, "reading config key")
	}
	return value, found, nil
}

// Set persists value under key via a batched write, matching the
// teacher's db.Batch usage for session bookkeeping writes.
func (s *BoltStore) Set(_ context.Context, key, value string) error {
	err := s.db.Batch(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketConfig)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return errors.Wrap(err, "writing config key")
	}
	return nil
}
