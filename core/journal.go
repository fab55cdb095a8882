package core

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"
)

const (
	runsBucketKey  = "RUNS"
	movesBucketKey = "moves"
	runMetaKey     = "meta"
)

// RunRecord is the journal header of one organizer run.
type RunRecord struct {
	ID         string
	MediaSrc   string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    Summary
}

// MoveRecord is one file the run moved (or would have moved, for dry runs).
type MoveRecord struct {
	Source      string
	Destination string
	Kind        string
	Date        Date
	DateSource  DateSource
	RecordedAt  time.Time
}

// Journal keeps a history of organizer runs in a bbolt database, so it is
// possible to find out later where a file went.
type Journal struct {
	logger hclog.Logger
	db     *bolt.DB
}

// OpenJournal opens the journal at path, creating it if needed.
func OpenJournal(logger hclog.Logger, path string) (*Journal, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, journalOpenError(path, err)
	}
	return &Journal{logger: logger, db: db}, nil
}

// OpenJournalReadOnly opens an existing journal for reading.
func OpenJournalReadOnly(logger hclog.Logger, path string) (*Journal, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("journal %q does not exist", path)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return nil, journalOpenError(path, err)
	}
	return &Journal{logger: logger, db: db}, nil
}

func journalOpenError(path string, err error) error {
	if errors.Is(err, bolt.ErrTimeout) {
		return fmt.Errorf("journal %q is in use by another run", path)
	}
	return fmt.Errorf("failed to open journal %q: %w", path, err)
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginRun records the header of a run that is about to start.
func (j *Journal) BeginRun(r *Report) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		b, err := getBucketForRun(tx, r.RunID)
		if err != nil {
			return err
		}
		return putGob(b, []byte(runMetaKey), runRecordFromReport(r))
	})
}

// RecordMove appends a moved file to a run started with BeginRun. Outcomes
// other than moves are ignored.
func (j *Journal) RecordMove(runID string, o Outcome) error {
	if o.Status != StatusMoved {
		return nil
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		b, err := getBucketForRun(tx, runID)
		if err != nil {
			return err
		}
		moves, err := b.CreateBucketIfNotExists([]byte(movesBucketKey))
		if err != nil {
			return err
		}

		seq, err := moves.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		return putGob(moves, key, &MoveRecord{
			Source:      o.Source,
			Destination: o.Destination,
			Kind:        o.Kind.String(),
			Date:        o.Date,
			DateSource:  o.DateSource,
			RecordedAt:  time.Now().UTC(),
		})
	})
}

// FinishRun overwrites the run header with the final summary.
func (j *Journal) FinishRun(r *Report) error {
	return j.BeginRun(r)
}

// Runs lists every recorded run, oldest first.
func (j *Journal) Runs() ([]RunRecord, error) {
	var runs []RunRecord
	err := j.db.View(func(tx *bolt.Tx) error {
		all := tx.Bucket([]byte(runsBucketKey))
		if all == nil {
			return nil
		}

		return all.ForEachBucket(func(k []byte) error {
			var run RunRecord
			if err := getGob(all.Bucket(k), []byte(runMetaKey), &run); err != nil {
				j.logger.Warn("skipping malformed run", "run", string(k), "error", err)
				return nil
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(a, b int) bool { return runs[a].StartedAt.Before(runs[b].StartedAt) })
	return runs, nil
}

// Moves lists the files recorded for a run, in the order they were moved.
func (j *Journal) Moves(runID string) ([]MoveRecord, error) {
	var moves []MoveRecord
	err := j.db.View(func(tx *bolt.Tx) error {
		b, err := getBucketForRun(tx, runID)
		if err != nil {
			return err
		}
		mb := b.Bucket([]byte(movesBucketKey))
		if mb == nil {
			return nil
		}

		c := mb.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var m MoveRecord
			if err := decodeGob(v, &m); err != nil {
				return err
			}
			moves = append(moves, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moves, nil
}

// DeleteRun removes a run and its move records.
func (j *Journal) DeleteRun(runID string) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		all := tx.Bucket([]byte(runsBucketKey))
		if all == nil || all.Bucket([]byte(runID)) == nil {
			return fmt.Errorf("run %q does not exist", runID)
		}
		return all.DeleteBucket([]byte(runID))
	})
}

func runRecordFromReport(r *Report) *RunRecord {
	return &RunRecord{
		ID:         r.RunID,
		MediaSrc:   r.MediaSrc,
		DryRun:     r.DryRun,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Summary:    r.Summary,
	}
}

func getBucketForRun(tx *bolt.Tx, runID string) (*bolt.Bucket, error) {
	if runID == "" {
		return nil, errors.New("run id cannot be empty")
	}

	if tx.Writable() {
		all, err := tx.CreateBucketIfNotExists([]byte(runsBucketKey))
		if err != nil {
			return nil, err
		}
		return all.CreateBucketIfNotExists([]byte(runID))
	}

	all := tx.Bucket([]byte(runsBucketKey))
	if all == nil {
		return nil, errors.New("no runs have been recorded")
	}
	b := all.Bucket([]byte(runID))
	if b == nil {
		return nil, fmt.Errorf("run %q does not exist", runID)
	}
	return b, nil
}

func putGob(b *bolt.Bucket, key []byte, v interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	return b.Put(key, buf.Bytes())
}

func getGob(b *bolt.Bucket, key []byte, v interface{}) error {
	raw := b.Get(key)
	if raw == nil {
		return fmt.Errorf("missing %q", key)
	}
	return decodeGob(raw, v)
}

func decodeGob(raw []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(raw)).Decode(v)
}
