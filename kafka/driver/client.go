package driver

import (
	"context"
	"regexp"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/nagyist/reactive-kafka/kafka"
)

// PollResult is the outcome of one Client.PollFetches call, grouped by
// partition the way the poll engine needs it.
type PollResult struct {
	Records map[TopicPartition][]Record
}

// Partitions returns the set of partitions present in the result,
// including ones that produced zero records, for invariant checking.
func (r PollResult) Partitions() []TopicPartition {
	out := make([]TopicPartition, 0, len(r.Records))
	for tp := range r.Records {
		out = append(out, tp)
	}
	return out
}

// Client is the narrow view of a Kafka consumer client the driver needs.
// Production code satisfies it with kgoClient, wrapping a *kgo.Client;
// tests satisfy it with a hand-written stub. Every method is called only
// from the driver's mailbox goroutine — implementations need no internal
// locking of their own.
type Client interface {
	CurrentAssignment() []TopicPartition
	Assign(partitions []TopicPartition) error
	SeekPartition(tp TopicPartition, offset Offset) error
	Subscribe(topics []string, listener RebalanceListener) error
	SubscribePattern(pattern string, listener RebalanceListener) error
	Pause(partitions []TopicPartition)
	Resume(partitions []TopicPartition)
	PollFetches(timeout time.Duration) (PollResult, error)
	CommitOffsetsAsync(offsets map[TopicPartition]Offset, onDone func(map[TopicPartition]OffsetAndMetadata, error))
	Close()
}

// kgoClient adapts a *kgo.Client, which is group-subscription-oriented
// and mostly configured at construction time, to the assign/subscribe/
// pause/resume/poll vocabulary this driver's design is specified against.
//
// Two operations need a small impedance-matching layer because kgo does
// not expose them directly the way a classic consumer client would:
//
//   - the rebalance listener is installed once, at client construction,
//     and simply forwards to whatever RebalanceListener is currently
//     held in the listener field — Subscribe/SubscribePattern swap that
//     field rather than re-registering a callback with the client.
//   - SubscribePattern resolves the regex against a metadata snapshot
//     and adds the matching topics; it does not track newly created
//     topics between driver-level resubscribes.
type kgoClient struct {
	cl       *kgo.Client
	listener RebalanceListener
	direct   map[TopicPartition]struct{}
	topics   map[string]struct{}
}

// newKgoClient creates the underlying franz-go client and installs the
// single rebalance hook that forwards to whatever listener is currently
// active.
func newKgoClient(opts ...kgo.Opt) (*kgoClient, error) {
	kc := &kgoClient{
		direct: make(map[TopicPartition]struct{}),
		topics: make(map[string]struct{}),
	}

	allOpts := append([]kgo.Opt{
		kgo.OnPartitionsAssigned(func(ctx context.Context, _ *kgo.Client, assigned map[string][]int32) {
			kc.listener.assigned(ctx, flatten(assigned))
		}),
		kgo.OnPartitionsRevoked(func(ctx context.Context, _ *kgo.Client, revoked map[string][]int32) {
			kc.listener.revoked(ctx, flatten(revoked))
		}),
		kgo.OnPartitionsLost(func(ctx context.Context, _ *kgo.Client, lost map[string][]int32) {
			kc.listener.revoked(ctx, flatten(lost))
		}),
		kgo.DisableAutoCommit(),
		// Guarantees OnPartitionsAssigned/Revoked/Lost fire synchronously
		// inside PollFetches instead of on franz-go's internal group
		// management goroutine, so the pause calls those hooks make land
		// on the mailbox goroutine like every other client mutation.
		// AllowRebalance must be called once the callback-driven state
		// change (pausing newly assigned partitions) has been applied.
		kgo.BlockRebalanceOnPoll(),
	}, opts...)

	cl, err := kgo.NewClient(allOpts...)
	if err != nil {
		return nil, err
	}
	kc.cl = cl
	return kc, nil
}

func flatten(byTopic map[string][]int32) []TopicPartition {
	out := make([]TopicPartition, 0, len(byTopic))
	for topic, partitions := range byTopic {
		for _, p := range partitions {
			out = append(out, TopicPartition{Topic: topic, Partition: p})
		}
	}
	return out
}

func (k *kgoClient) CurrentAssignment() []TopicPartition {
	out := make([]TopicPartition, 0, len(k.direct))
	for tp := range k.direct {
		out = append(out, tp)
	}
	return out
}

// Assign adds partitions to the direct-consume set, additively: already
// assigned partitions are left alone, new ones start at the broker
// default (latest) position.
func (k *kgoClient) Assign(partitions []TopicPartition) error {
	byTopic := make(map[string]map[int32]kgo.Offset)
	for _, tp := range partitions {
		if _, already := k.direct[tp]; already {
			continue
		}
		if byTopic[tp.Topic] == nil {
			byTopic[tp.Topic] = make(map[int32]kgo.Offset)
		}
		byTopic[tp.Topic][tp.Partition] = kgo.NewOffset().AtEnd()
		k.direct[tp] = struct{}{}
	}
	if len(byTopic) == 0 {
		return nil
	}
	k.cl.AddConsumePartitions(byTopic)
	return nil
}

func (k *kgoClient) SeekPartition(tp TopicPartition, offset Offset) error {
	k.cl.SetOffsets(map[string]map[int32]kgo.EpochOffset{
		tp.Topic: {tp.Partition: kgo.EpochOffset{Epoch: -1, Offset: int64(offset)}},
	})
	return nil
}

func (k *kgoClient) Subscribe(topics []string, listener RebalanceListener) error {
	k.listener = listener

	stale := make([]string, 0, len(k.topics))
	for t := range k.topics {
		stale = append(stale, t)
	}
	if len(stale) > 0 {
		k.cl.PurgeTopicsFromClient(stale...)
	}

	k.topics = make(map[string]struct{}, len(topics))
	for _, t := range topics {
		k.topics[t] = struct{}{}
	}
	k.cl.AddConsumeTopics(topics...)
	return nil
}

func (k *kgoClient) SubscribePattern(pattern string, listener RebalanceListener) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}

	topics, err := k.listTopics()
	if err != nil {
		return err
	}

	matched := make([]string, 0, len(topics))
	for _, t := range topics {
		if re.MatchString(t) {
			matched = append(matched, t)
		}
	}
	return k.Subscribe(matched, listener)
}

func (k *kgoClient) listTopics() ([]string, error) {
	md, err := k.cl.RequestCachedMetadata(0)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(md.Topics))
	for _, t := range md.Topics {
		if t.Topic != nil {
			out = append(out, *t.Topic)
		}
	}
	return out, nil
}

func (k *kgoClient) Pause(partitions []TopicPartition) {
	if len(partitions) == 0 {
		return
	}
	byTopic := byTopicInt32(partitions)
	k.cl.PauseFetchPartitions(byTopic)
}

func (k *kgoClient) Resume(partitions []TopicPartition) {
	if len(partitions) == 0 {
		return
	}
	byTopic := byTopicInt32(partitions)
	k.cl.ResumeFetchPartitions(byTopic)
}

func byTopicInt32(partitions []TopicPartition) map[string][]int32 {
	out := make(map[string][]int32)
	for _, tp := range partitions {
		out[tp.Topic] = append(out[tp.Topic], tp.Partition)
	}
	return out
}

func (k *kgoClient) PollFetches(timeout time.Duration) (PollResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fetches := k.cl.PollFetches(ctx)
	k.cl.AllowRebalance()

	if errs := fetches.Errors(); len(errs) > 0 {
		return PollResult{}, errs[0].Err
	}

	result := PollResult{Records: make(map[TopicPartition][]Record)}
	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		tp := TopicPartition{Topic: p.Topic, Partition: p.Partition}
		recs := make([]Record, 0, len(p.Records))
		for _, r := range p.Records {
			recs = append(recs, convertRecord(r))
		}
		result.Records[tp] = recs
	})
	return result, nil
}

func convertRecord(r *kgo.Record) Record {
	return Record{
		Topic:     r.Topic,
		Partition: r.Partition,
		Offset:    Offset(r.Offset),
		Timestamp: r.Timestamp,
		Key:       r.Key,
		Value:     r.Value,
		Headers:   convertHeaders(r.Headers),
	}
}

func (k *kgoClient) CommitOffsetsAsync(offsets map[TopicPartition]Offset, onDone func(map[TopicPartition]OffsetAndMetadata, error)) {
	toCommit := make(map[string]map[int32]kgo.EpochOffset, len(offsets))
	for tp, off := range offsets {
		if toCommit[tp.Topic] == nil {
			toCommit[tp.Topic] = make(map[int32]kgo.EpochOffset)
		}
		toCommit[tp.Topic][tp.Partition] = kgo.EpochOffset{Epoch: -1, Offset: int64(off)}
	}

	k.cl.CommitOffsetsAsync(context.Background(), toCommit, func(_ *kgo.Client, _ *kmsg.OffsetCommitRequest, resp *kmsg.OffsetCommitResponse, err error) {
		if err != nil {
			onDone(nil, err)
			return
		}
		result := make(map[TopicPartition]OffsetAndMetadata)
		for _, topic := range resp.Topics {
			for _, part := range topic.Partitions {
				if part.ErrorCode != 0 {
					continue
				}
				tp := TopicPartition{Topic: topic.Topic, Partition: part.Partition}
				result[tp] = OffsetAndMetadata{Offset: offsets[tp]}
			}
		}
		onDone(result, nil)
	})
}

func (k *kgoClient) Close() {
	k.cl.Close()
}

func convertHeaders(headers []kgo.RecordHeader) []kafka.Header {
	if len(headers) == 0 {
		return nil
	}
	out := make([]kafka.Header, len(headers))
	for i, h := range headers {
		out[i] = kafka.Header{Key: h.Key, Value: h.Value}
	}
	return out
}
