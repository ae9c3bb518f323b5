package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

type fakeEntry struct {
	key      string
	value    []byte
	revision uint64
	op       jetstream.KeyValueOp
}

func (e *fakeEntry) Bucket() string { return DefaultBucket }
func (e *fakeEntry) Key() string { return e.key }
func (e *fakeEntry) Value() []byte { return e.value }
func (e *fakeEntry) Revision() uint64 { return e.revision }
func (e *fakeEntry) Created() time.Time { return time.Time{} }
func (e *fakeEntry) Delta() uint64 { return 0 }
func (e *fakeEntry) Operation() jetstream.KeyValueOp { return e.op }

// fakeKV keeps every revision in memory.
type fakeKV struct {
	revisions map[string][]*fakeEntry
	seq       uint64
	putErr    error
}

func newFakeKV() *fakeKV {
	return &fakeKV{revisions: make(map[string][]*fakeEntry)}
}

func (f *fakeKV) Put(_ context.Context, key string, value []byte) (uint64, error) {
	if f.putErr != nil {
		return 0, f.putErr
	}
	f.seq++
	f.revisions[key] = append(f.revisions[key], &fakeEntry{key: key, value: value, revision: f.seq, op: jetstream.KeyValuePut})
	return f.seq, nil
}

func (f *fakeKV) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	revs := f.revisions[key]
	if len(revs) == 0 {
		return nil, jetstream.ErrKeyNotFound
	}
	return revs[len(revs)-1], nil
}

func (f *fakeKV) Keys(_ context.Context, _ ...jetstream.WatchOpt) ([]string, error) {
	if len(f.revisions) == 0 {
		return nil, jetstream.ErrNoKeysFound
	}
	keys := make([]string, 0, len(f.revisions))
	for k := range f.revisions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeKV) History(_ context.Context, key string, _ ...jetstream.WatchOpt) ([]jetstream.KeyValueEntry, error) {
	revs := f.revisions[key]
	if len(revs) == 0 {
		return nil, jetstream.ErrKeyNotFound
	}
	entries := make([]jetstream.KeyValueEntry, len(revs))
	for i, r := range revs {
		entries[i] = r
	}
	return entries, nil
}

func TestKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"BII-I-1", "BII-I-1"},
		{"a.b=c_d", "a.b=c_d"},
		{"INV_1", "INV_1"},
	}

	for _, tc := range tests {
		if got := Key(tc.input); got != tc.expected {
			t.Errorf("Key(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestKey_Rewritten(t *testing.T) {
	tests := []struct {
		input  string
		prefix string
	}{
		{"inv 2021/03", "inv_2021_03-"},
		{"Müller", "M_ller-"},
		{"INV 1", "INV_1-"},
	}

	for _, tc := range tests {
		got := Key(tc.input)
		if !strings.HasPrefix(got, tc.prefix) {
			t.Errorf("Key(%q) = %q, expected prefix %q", tc.input, got, tc.prefix)
		}
		if len(got) != len(tc.prefix)+2*keyHashBytes {
			t.Errorf("Key(%q) = %q, expected a %d character hash suffix", tc.input, got, 2*keyHashBytes)
		}
		if again := Key(tc.input); again != got {
			t.Errorf("Key(%q) is not stable: %q then %q", tc.input, got, again)
		}
	}
}

func TestKey_NoCollision(t *testing.T) {
	pairs := [][2]string{
		{"INV 1", "INV_1"},
		{"INV 1", "INV/1"},
		{"a b", "a_b"},
	}
	for _, p := range pairs {
		if Key(p[0]) == Key(p[1]) {
			t.Errorf("Key(%q) and Key(%q) both map to %q", p[0], p[1], Key(p[0]))
		}
	}
}

func TestStore_SeparatesLookalikeIdentifiers(t *testing.T) {
	ctx := context.Background()
	s := newStore(newFakeKV())

	if err := s.Put(ctx, &Record{Identifier: "INV 1", Lines: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Put(ctx, &Record{Identifier: "INV_1", Lines: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Latest(ctx, "INV 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Identifier != "INV 1" || got.Lines != 1 {
		t.Errorf("expected the record of %q, got %+v", "INV 1", got)
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Put fills ID and timestamp", func(t *testing.T) {
		s := newStore(newFakeKV())
		s.now = func() time.Time { return fixed }

		r := &Record{Identifier: "INV-1", Success: true, Lines: 42}
		if err := s.Put(ctx, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.ID == "" {
			t.Error("expected non-empty ID")
		}
		if !r.CreatedAt.Equal(fixed) {
			t.Errorf("unexpected created_at: %v", r.CreatedAt)
		}

		got, err := s.Latest(ctx, "INV-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != r.ID || got.Lines != 42 || !got.Success {
			t.Errorf("unexpected record: %+v", got)
		}
	})

	t.Run("Put rejects missing identifier", func(t *testing.T) {
		s := newStore(newFakeKV())
		if err := s.Put(ctx, &Record{}); !errors.Is(err, ErrNoIdentifier) {
			t.Errorf("expected ErrNoIdentifier, got %v", err)
		}
	})

	t.Run("Put wraps KV errors", func(t *testing.T) {
		kv := newFakeKV()
		kv.putErr = errors.New("bucket gone")
		s := newStore(kv)
		err := s.Put(ctx, &Record{Identifier: "INV-1"})
		if !errors.Is(err, kv.putErr) {
			t.Errorf("expected wrapped KV error, got %v", err)
		}
	})

	t.Run("Latest of unknown identifier", func(t *testing.T) {
		s := newStore(newFakeKV())
		if _, err := s.Latest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("History keeps revisions in order", func(t *testing.T) {
		s := newStore(newFakeKV())
		for i := 1; i <= 3; i++ {
			if err := s.Put(ctx, &Record{Identifier: "INV-1", Lines: i}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		records, err := s.History(ctx, "INV-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		for i, r := range records {
			if r.Lines != i+1 {
				t.Errorf("record %d: expected lines %d, got %d", i, i+1, r.Lines)
			}
		}
	})

	t.Run("List returns latest per identifier", func(t *testing.T) {
		s := newStore(newFakeKV())
		puts := []*Record{
			{Identifier: "INV-B", Lines: 1},
			{Identifier: "INV-A", Lines: 2},
			{Identifier: "INV-B", Lines: 3},
		}
		for _, r := range puts {
			if err := s.Put(ctx, r); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		records, err := s.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Identifier != "INV-A" || records[1].Identifier != "INV-B" {
			t.Errorf("unexpected order: %s, %s", records[0].Identifier, records[1].Identifier)
		}
		if records[1].Lines != 3 {
			t.Errorf("expected latest INV-B revision, got lines %d", records[1].Lines)
		}
	})

	t.Run("List of empty bucket", func(t *testing.T) {
		s := newStore(newFakeKV())
		records, err := s.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})
}
