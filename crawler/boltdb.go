package crawler

import (
	"encoding/binary"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gocolly/colly/v2/storage"
	bolt "go.etcd.io/bbolt"
)

var (
	visitedBucket = []byte("visited")
	cookiesBucket = []byte("cookies")
)

// BoltStorage persists the fetch collector's request ids and cookies
// across runs.
type BoltStorage struct {
	path string
	db   *bolt.DB
}

func NewBoltStorage(path string) *BoltStorage {
	return &BoltStorage{path: path}
}

// Init implements storage.Storage. colly calls it from SetStorage.
func (s *BoltStorage) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	db, err := bolt.Open(s.path, 0o600, nil)
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{visitedBucket, cookiesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("create state buckets: %w", err)
	}

	s.db = db
	return nil
}

func (s *BoltStorage) Visited(requestID uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(visitedBucket).Put(requestKey(requestID), []byte{1})
	})
}

func (s *BoltStorage) IsVisited(requestID uint64) (bool, error) {
	var visited bool
	err := s.db.View(func(tx *bolt.Tx) error {
		visited = tx.Bucket(visitedBucket).Get(requestKey(requestID)) != nil
		return nil
	})
	return visited, err
}

// VisitedCount reports how many distinct requests the store has seen.
func (s *BoltStorage) VisitedCount() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(visitedBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Cookies are keyed by host; colly's jar does the path/expiry filtering.
func (s *BoltStorage) Cookies(u *url.URL) string {
	var cookies string
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(cookiesBucket).Get([]byte(u.Host)); v != nil {
			cookies = string(v)
		}
		return nil
	})
	return cookies
}

func (s *BoltStorage) SetCookies(u *url.URL, cookies string) {
	_ = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cookiesBucket).Put([]byte(u.Host), []byte(cookies))
	})
}

func (s *BoltStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func requestKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

var _ storage.Storage = (*BoltStorage)(nil)
