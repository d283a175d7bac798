// Package sessions persists browser sessions in a bolt key/value file
package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

var bucketName = []byte("sessions")

// BoltStore keeps one JSON document per session token
type BoltStore struct {
	db *bolt.DB
}

// Verify interface compliance
var _ repositories.SessionStore = (*BoltStore)(nil)

// OpenBoltStore opens (or creates) the session file at path
func OpenBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the file lock
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Save(_ context.Context, session *entities.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(session.Token), data)
	})
}

func (s *BoltStore) Get(_ context.Context, token string) (*entities.Session, error) {
	var session entities.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketName).Get([]byte(token))
		if data == nil {
			return repositories.ErrNotFound
		}
		return json.Unmarshal(data, &session)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *BoltStore) Delete(_ context.Context, token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(token))
	})
}

// DeleteExpired removes sessions that expired at or before now. Entries that
// no longer decode are removed too.
func (s *BoltStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var session entities.Session
			if err := json.Unmarshal(v, &session); err != nil || session.Expired(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}
