package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketSchemas = "schemas"

// BoltStore keeps the document under one key of a bbolt bucket
type BoltStore struct {
	db  *bolt.DB
	key []byte
}

// OpenBolt opens (or creates) the database at path
func OpenBolt(path, key string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSchemas))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schemas bucket: %w", err)
	}

	return &BoltStore{db: db, key: []byte(key)}, nil
}

func (s *BoltStore) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketSchemas)).Get(s.key)
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

func (s *BoltStore) Save(ctx context.Context, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSchemas)).Put(s.key, data)
	})
}

func (s *BoltStore) Reset(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSchemas)).Delete(s.key)
	})
}

func (s *BoltStore) Driver() string { return DriverBolt }
func (s *BoltStore) Close() error   { return s.db.Close() }
