package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("extracted_text")

var ErrCacheClosed = errors.New("text cache is closed")

// TextRepository stores normalized extraction results keyed by document
// content.
type TextRepository interface {
	Get(key string) (string, bool, error)
	Put(key, text string) error
}

// TextCache is a BoltDB-backed TextRepository.
type TextCache struct {
	DBPath string
	db     *bolt.DB
	mu     sync.RWMutex
}

// Key builds the cache key for a document of the given format whose bytes
// hash to digest.
func Key(format, digest string) string {
	return format + ":" + digest
}

// OpenTextCache opens or creates the database at path.
func OpenTextCache(path string) (*TextCache, error) {
	c := &TextCache{DBPath: path}
	if err := c.Init(); err != nil {
		return nil, err
	}
	return c, nil
}

// Init initializes the BoltDB database
func (c *TextCache) Init() error {
	dbDir := filepath.Dir(c.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for BoltDB: %w", err)
	}

	db, err := bolt.Open(c.DBPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to open BoltDB: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	c.db = db
	return nil
}

func (c *TextCache) Get(key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return "", false, ErrCacheClosed
	}

	var (
		text  string
		found bool
	)
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			// v is only valid inside the transaction.
			text = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached text: %w", err)
	}
	return text, found, nil
}

func (c *TextCache) Put(key, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return ErrCacheClosed
	}

	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(text))
	})
	if err != nil {
		return fmt.Errorf("failed to write cached text: %w", err)
	}
	return nil
}

// Len reports the number of cached documents.
func (c *TextCache) Len() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return 0, ErrCacheClosed
	}

	var n int
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear removes all data from storage
func (c *TextCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return ErrCacheClosed
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
}

// Close closes the BoltDB database
func (c *TextCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

var _ TextRepository = (*TextCache)(nil)
