package auditlog

import (
	"context"
	"fmt"

	"github.com/nagyist/reactive-kafka/kafka/driver"
)

// Sink adapts Store to driver.AuditSink. A write failure is handed to
// onErr when one is set and dropped otherwise; it is never returned to
// the driver: the audit trail is best-effort and must never become a
// reason the driver itself fails.
type Sink struct {
	store *Store
	onErr func(error)
}

// NewSink wraps store as a driver.AuditSink. onErr, if non-nil, is
// called with any error writing the audit row; pass nil to ignore it
// entirely.
func NewSink(store *Store, onErr func(error)) *Sink {
	return &Sink{store: store, onErr: onErr}
}

func (s *Sink) RecordCommitFailure(ctx context.Context, instanceID string, offsets map[driver.TopicPartition]driver.Offset, cause error) {
	keyed := make(map[string]int64, len(offsets))
	for tp, off := range offsets {
		keyed[fmt.Sprintf("%s:%d", tp.Topic, tp.Partition)] = int64(off)
	}
	if err := s.store.RecordCommitFailure(ctx, instanceID, keyed, cause); err != nil && s.onErr != nil {
		s.onErr(err)
	}
}
