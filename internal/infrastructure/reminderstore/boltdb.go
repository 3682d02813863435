package reminderstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store persists pending reminders in BoltDB so scheduled notifications
// survive process restarts. Keys are ordered by fire time, which lets the
// dispatcher read due reminders with a plain cursor scan.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "reminders"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Put stores a reminder under a fire-time-ordered key.
func (s *Store) Put(reminder Reminder) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	reminder.normalize()
	reminder.bucketKey = []byte(buildKey(reminder))

	payload, err := json.Marshal(reminder)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(reminder.bucketKey, payload)
	})
}

// Due returns up to limit reminders whose fire time is at or before now,
// without removing them.
func (s *Store) Due(now time.Time, limit int) ([]Reminder, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var due []Reminder
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(due) < limit; k, v = c.Next() {
			var reminder Reminder
			if err := json.Unmarshal(v, &reminder); err != nil {
				continue
			}
			if reminder.FireAt.After(now) {
				// Keys are time-ordered, nothing later can be due.
				break
			}
			reminder.bucketKey = append([]byte(nil), k...)
			due = append(due, reminder)
		}
		return nil
	})
	return due, err
}

// Pending enumerates every stored reminder in fire-time order.
func (s *Store) Pending() ([]Reminder, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var pending []Reminder
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var reminder Reminder
			if err := json.Unmarshal(v, &reminder); err != nil {
				continue
			}
			reminder.bucketKey = append([]byte(nil), k...)
			pending = append(pending, reminder)
		}
		return nil
	})
	return pending, err
}

// Remove deletes the provided reminder.
func (s *Store) Remove(reminder Reminder) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if len(reminder.bucketKey) == 0 {
		reminder.bucketKey = []byte(buildKey(reminder))
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(reminder.bucketKey)
	})
}

// CancelTask removes every pending reminder for the given task.
func (s *Store) CancelTask(taskID string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if taskID == "" {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var reminder Reminder
			if err := json.Unmarshal(v, &reminder); err != nil {
				continue
			}
			if reminder.TaskID == taskID {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// CancelUser removes every pending reminder for the given user. An empty
// userID clears reminders that carry no owner.
func (s *Store) CancelUser(userID string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var reminder Reminder
			if err := json.Unmarshal(v, &reminder); err != nil {
				continue
			}
			if reminder.UserID == userID {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Size returns the number of stored reminders.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildKey(reminder Reminder) string {
	return fmt.Sprintf("%020d_%s", reminder.FireAt.UnixNano(), reminder.TaskID)
}
