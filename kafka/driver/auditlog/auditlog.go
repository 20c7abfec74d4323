// Package auditlog persists a record of every commit the driver failed
// to complete, for operators to triage — never as a source of truth for
// offsets, which always live in Kafka itself.
package auditlog

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/nagyist/reactive-kafka/pgrepo"
)

// Entry is one row of the commit_failures table.
type Entry struct {
	ID         int64     `db:"id"`
	DriverID   string    `db:"driver_id"`
	Offsets    string    `db:"offsets"` // JSON-encoded topic/partition -> offset
	Cause      string    `db:"cause"`
	OccurredAt time.Time `db:"occurred_at"`
}

// Store appends commit-failure rows to Postgres through a master pool
// and reads them back for operator-facing dashboards.
type Store struct {
	pool func() *pgxpool.Pool
}

// New wraps a pool getter, called lazily on every query rather than
// once at construction, since the Store is typically built before the
// pgrepo.DB it reads from has been started. Callers typically pass
// db.Master (the method value, not its result).
func New(pool func() *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// offsetKey mirrors driver.TopicPartition without importing the driver
// package, keeping auditlog usable independently of it.
type offsetKey struct {
	Topic     string `json:"topic"`
	Partition int32  `json:"partition"`
	Offset    int64  `json:"offset"`
}

// splitTopicPartition reverses sink.go's "topic:partition" composite key.
// Kafka topic names never contain ':', so the last colon is the
// unambiguous separator.
func splitTopicPartition(key string) (topic string, partition int32, err error) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return "", 0, errors.Errorf("malformed offset key %q", key)
	}
	p, err := strconv.ParseInt(key[idx+1:], 10, 32)
	if err != nil {
		return "", 0, errors.Wrapf(err, "parse partition in offset key %q", key)
	}
	return key[:idx], int32(p), nil
}

// RecordCommitFailure inserts one row describing a failed commit
// attempt. offsets maps a string-keyed representation (topic:partition)
// to the int64 offset that failed to commit; callers adapt their own
// partition type to this shape at the call site.
func (s *Store) RecordCommitFailure(ctx context.Context, driverID string, offsets map[string]int64, cause error) error {
	keys := make([]offsetKey, 0, len(offsets))
	for k, off := range offsets {
		topic, partition, err := splitTopicPartition(k)
		if err != nil {
			return errors.Wrap(err, "parse offset key")
		}
		keys = append(keys, offsetKey{Topic: topic, Partition: partition, Offset: off})
	}
	encoded, err := json.Marshal(keys)
	if err != nil {
		return errors.Wrap(err, "encode offsets")
	}

	const query = `
		INSERT INTO commit_failures (driver_id, offsets, cause, occurred_at)
		VALUES ($1, $2, $3, now())
	`
	// pgrepo.Exec rather than a bare pool.Exec: if a caller wraps ctx in
	// pgrepo.WithTx (e.g. to record the audit row alongside a domain
	// write in the same transaction), this insert joins it automatically.
	if _, err := pgrepo.Exec(ctx, s.pool(), query, driverID, encoded, cause.Error()); err != nil {
		return errors.Wrap(err, "insert commit failure")
	}
	return nil
}

// RecentFailures returns the most recent failures for a driver, newest
// first, for an operator dashboard.
func (s *Store) RecentFailures(ctx context.Context, driverID string, limit int) ([]Entry, error) {
	const query = `
		SELECT id, driver_id, offsets, cause, occurred_at
		FROM commit_failures
		WHERE driver_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	var entries []Entry
	if err := pgxscan.Select(ctx, s.pool(), &entries, query, driverID, limit); err != nil {
		return nil, errors.Wrap(err, "select recent failures")
	}
	return entries, nil
}

// LastFailure returns the single most recent failure for a driver.
func (s *Store) LastFailure(ctx context.Context, driverID string) (Entry, error) {
	const query = `
		SELECT id, driver_id, offsets, cause, occurred_at
		FROM commit_failures
		WHERE driver_id = $1
		ORDER BY occurred_at DESC
		LIMIT 1
	`
	var entry Entry
	if err := pgxscan.Get(ctx, s.pool(), &entry, query, driverID); err != nil {
		return Entry{}, errors.Wrap(err, "select last failure")
	}
	return entry, nil
}
