package driver

import (
	"context"
	"time"

	"github.com/nagyist/reactive-kafka/kafka"
)

// TopicPartition identifies a single Kafka partition. Comparable, usable
// as a map key.
type TopicPartition struct {
	Topic     string
	Partition int32
}

// Offset is a partition-relative, monotonically increasing sequence
// number.
type Offset int64

// OffsetAndMetadata is the payload of a committed offset, mirroring the
// Kafka wire concept of the same name.
type OffsetAndMetadata struct {
	Offset   Offset
	Metadata string
}

// Record is one fetched Kafka record, flattened from the underlying
// client's representation.
type Record struct {
	Topic     string
	Partition int32
	Offset    Offset
	Timestamp time.Time
	Key       []byte
	Value     []byte
	Headers   []kafka.Header
}

// TopicPartition returns the partition this record belongs to.
func (r Record) TopicPartition() TopicPartition {
	return TopicPartition{Topic: r.Topic, Partition: r.Partition}
}

// RebalanceListener receives notifications when the broker reassigns
// partitions across consumer-group members. Either hook may be nil.
type RebalanceListener struct {
	OnAssigned func(ctx context.Context, assigned []TopicPartition)
	OnRevoked  func(ctx context.Context, revoked []TopicPartition)
}

func (l RebalanceListener) assigned(ctx context.Context, parts []TopicPartition) {
	if l.OnAssigned != nil {
		l.OnAssigned(ctx, parts)
	}
}

func (l RebalanceListener) revoked(ctx context.Context, parts []TopicPartition) {
	if l.OnRevoked != nil {
		l.OnRevoked(ctx, parts)
	}
}
