package main

import (
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store is a bbolt-backed store of named configuration documents.
//
// Only documents live here: no vars, no current pointers.  Run state
// deliberately does not survive the process.
type Store struct {
	filename string
	db       *bolt.DB
}

var configsBucket = []byte("configs")

var ConfigNotFound = errors.New("config not found")

// NewStore makes a Store for the given file.
func NewStore(filename string) *Store {
	return &Store{
		filename: filename,
	}
}

// Open opens the database, creating it (and the bucket) if needed.
func (s *Store) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}
	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(configsBucket)
		return err
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a configuration document under a name.
func (s *Store) Put(name string, doc []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(configsBucket).Put([]byte(name), doc)
	})
}

// Get fetches a configuration document by name.
func (s *Store) Get(name string) ([]byte, error) {
	var doc []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket(configsBucket).Get([]byte(name))
		if bs == nil {
			return ConfigNotFound
		}
		doc = make([]byte, len(bs))
		copy(doc, bs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Rem removes a configuration document.
func (s *Store) Rem(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(configsBucket).Delete([]byte(name))
	})
}

// List returns the stored configuration names in key order.
func (s *Store) List() ([]string, error) {
	names := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(configsBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			names = append(names, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
