// Package storage keeps the export history of investigations in NATS KV.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the KV bucket used when none is configured.
const DefaultBucket = "ISATAB_EXPORTS"

// keyHashBytes is the length of the hash suffix on rewritten keys.
const keyHashBytes = 4

// historyDepth is the number of revisions kept per investigation.
const historyDepth = 10

// Record describes one export of an investigation.
type Record struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	RunID      string    `json:"run_id,omitempty"`
	Source     string    `json:"source"`
	Output     string    `json:"output"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Lines      int       `json:"lines"`
	Bytes      int64     `json:"bytes"`
	Studies    int       `json:"studies"`
	CreatedAt  time.Time `json:"created_at"`
}

// keyValue is the part of jetstream.KeyValue used by Store.
type keyValue interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
	History(ctx context.Context, key string, opts ...jetstream.WatchOpt) ([]jetstream.KeyValueEntry, error)
}

// Store provides export record storage backed by NATS KV. Records are keyed
// by investigation identifier; the bucket keeps the latest revisions.
type Store struct {
	kv  keyValue
	now func() time.Time
}

// NewStore creates a new Store with the given JetStream context.
// It creates the KV bucket if it doesn't exist.
func NewStore(ctx context.Context, js jetstream.JetStream, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("create %s bucket: %w", bucket, err)
	}
	return newStore(kv), nil
}

func newStore(kv keyValue) *Store {
	return &Store{kv: kv, now: time.Now}
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Isatab investigation export history",
		History:     historyDepth,
	})
}

// Key maps an investigation identifier to a valid KV key. Characters KV keys
// do not allow are replaced by '_'. When anything was replaced, a short hash
// of the original identifier is appended so that identifiers such as
// "INV 1" and "INV_1" keep separate histories.
func Key(identifier string) string {
	lossy := false
	key := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '=', r == '.':
			return r
		default:
			lossy = true
			return '_'
		}
	}, identifier)
	if !lossy {
		return key
	}
	sum := sha256.Sum256([]byte(identifier))
	return key + "-" + hex.EncodeToString(sum[:keyHashBytes])
}

// Put stores r as the latest export of its investigation. A missing ID and
// creation time are filled in.
func (s *Store) Put(ctx context.Context, r *Record) error {
	if r.Identifier == "" {
		return ErrNoIdentifier
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if _, err := s.kv.Put(ctx, Key(r.Identifier), data); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	return nil
}

// Latest retrieves the most recent export record of an investigation.
func (s *Store) Latest(ctx context.Context, identifier string) (*Record, error) {
	entry, err := s.kv.Get(ctx, Key(identifier))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return decode(entry)
}

// History returns the retained export records of an investigation, oldest
// first.
func (s *Store) History(ctx context.Context, identifier string) ([]*Record, error) {
	entries, err := s.kv.History(ctx, Key(identifier))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get history: %w", err)
	}

	records := make([]*Record, 0, len(entries))
	for _, entry := range entries {
		if entry.Operation() != jetstream.KeyValuePut {
			continue
		}
		r, err := decode(entry)
		if err != nil {
			continue // Skip entries that fail to decode
		}
		records = append(records, r)
	}
	return records, nil
}

// List returns the latest record of every investigation, ordered by
// identifier.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list record keys: %w", err)
	}

	records := make([]*Record, 0, len(keys))
	for _, key := range keys {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		r, err := decode(entry)
		if err != nil {
			continue
		}
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Identifier < records[j].Identifier
	})
	return records, nil
}

func decode(entry jetstream.KeyValueEntry) (*Record, error) {
	var r Record
	if err := json.Unmarshal(entry.Value(), &r); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &r, nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) ||
		(err != nil && strings.Contains(err.Error(), "key not found"))
}
