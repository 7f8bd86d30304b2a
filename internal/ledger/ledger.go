// Package ledger provides an optional, bbolt-backed append-only record
// of dvmrun invocations.
//
// Schema (bbolt bucket layout):
//
//	/runs
//	    key:   big-endian uint64 sequence number (monotonic, sortable)
//	    value: JSON-encoded RunRecord
//
//	/meta
//	    key:   "schema_version"
//	    value: "1"
//
// The ledger is never touched by the engine itself — only the dvmrun
// front end writes to it, after a run has already produced its trace.
// This preserves the engine's invariant that no state is shared between
// invocations.
//
// Retention: the oldest entries beyond RetentionRuns are pruned after
// every append.
package ledger

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// SchemaVersion is the current ledger schema version.
	SchemaVersion = "1"

	bucketRuns = "runs"
	bucketMeta = "meta"
)

// RunRecord is one persisted dvmrun invocation.
type RunRecord struct {
	Seq        uint64          `json:"seq"`
	EntryProc  string          `json:"entry_proc"`
	Regime     string          `json:"regime"`
	Trace      json.RawMessage `json:"trace"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Ledger wraps a bbolt database with typed accessors for run records.
type Ledger struct {
	db            *bolt.DB
	retentionRuns int
}

// Open opens (or creates) the ledger database at path.
func Open(path string, retentionRuns int, openTimeout time.Duration) (*Ledger, error) {
	if retentionRuns <= 0 {
		retentionRuns = 1000
	}

	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("ledger: bolt.Open(%q): %w", path, err)
	}

	l := &Ledger{db: bdb, retentionRuns: retentionRuns}

	if err := l.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketRuns, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("CreateBucketIfNotExists(%q): %w", name, err)
			}
		}
		meta := tx.Bucket([]byte(bucketMeta))
		if meta.Get([]byte("schema_version")) == nil {
			return meta.Put([]byte("schema_version"), []byte(SchemaVersion))
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("ledger: initialisation failed: %w", err)
	}

	return l, nil
}

// Close closes the underlying database file.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// AppendRun records one completed run and prunes the ledger back down to
// RetentionRuns entries, oldest first.
func (l *Ledger) AppendRun(entryProc, regime string, traceJSON []byte) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("AppendRun: NextSequence: %w", err)
		}

		rec := RunRecord{
			Seq:        seq,
			EntryProc:  entryProc,
			Regime:     regime,
			Trace:      json.RawMessage(traceJSON),
			RecordedAt: time.Now().UTC(),
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("AppendRun: marshal: %w", err)
		}
		if err := b.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("AppendRun: put: %w", err)
		}

		return pruneOldest(b, l.retentionRuns)
	})
}

func pruneOldest(b *bolt.Bucket, keep int) error {
	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	if len(keys) <= keep {
		return nil
	}
	for _, k := range keys[:len(keys)-keep] {
		if err := b.Delete(k); err != nil {
			return fmt.Errorf("pruneOldest: delete: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit of the most recently appended run records,
// newest first.
func (l *Ledger) Recent(limit int) ([]RunRecord, error) {
	var out []RunRecord
	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		c := b.Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("Recent: unmarshal: %w", err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
