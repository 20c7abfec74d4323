package driver_test

import (
	"context"
	"sync"
	"time"

	"github.com/nagyist/reactive-kafka/kafka/driver"
)

// stubClient is a hand-written fake satisfying driver.Client, standing in
// for a real Kafka client in tests the way spec scenarios describe:
// tests stage pending records and commit outcomes, then drive the
// driver's public API and assert on what requesters receive.
type stubClient struct {
	mu sync.Mutex

	assignment  map[driver.TopicPartition]struct{}
	paused      map[driver.TopicPartition]struct{}
	pending     map[driver.TopicPartition][]driver.Record
	ignorePause map[driver.TopicPartition]struct{}

	pollErr error

	listener driver.RebalanceListener

	commits     []map[driver.TopicPartition]driver.Offset
	commitErr   error
	commitDelay chan struct{} // if non-nil, held until closed before invoking onDone

	pauseCalls  [][]driver.TopicPartition
	resumeCalls [][]driver.TopicPartition

	closed bool
}

func newStubClient() *stubClient {
	return &stubClient{
		assignment:  make(map[driver.TopicPartition]struct{}),
		paused:      make(map[driver.TopicPartition]struct{}),
		pending:     make(map[driver.TopicPartition][]driver.Record),
		ignorePause: make(map[driver.TopicPartition]struct{}),
	}
}

func (s *stubClient) CurrentAssignment() []driver.TopicPartition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]driver.TopicPartition, 0, len(s.assignment))
	for tp := range s.assignment {
		out = append(out, tp)
	}
	return out
}

func (s *stubClient) Assign(partitions []driver.TopicPartition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tp := range partitions {
		s.assignment[tp] = struct{}{}
	}
	return nil
}

func (s *stubClient) SeekPartition(tp driver.TopicPartition, offset driver.Offset) error {
	return nil
}

func (s *stubClient) Subscribe(topics []string, listener driver.RebalanceListener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

func (s *stubClient) SubscribePattern(pattern string, listener driver.RebalanceListener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

func (s *stubClient) Pause(partitions []driver.TopicPartition) {
	if len(partitions) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseCalls = append(s.pauseCalls, partitions)
	for _, tp := range partitions {
		s.paused[tp] = struct{}{}
	}
}

func (s *stubClient) Resume(partitions []driver.TopicPartition) {
	if len(partitions) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeCalls = append(s.resumeCalls, partitions)
	for _, tp := range partitions {
		delete(s.paused, tp)
	}
}

func (s *stubClient) PollFetches(timeout time.Duration) (driver.PollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pollErr != nil {
		return driver.PollResult{}, s.pollErr
	}

	result := driver.PollResult{Records: make(map[driver.TopicPartition][]driver.Record)}
	for tp, recs := range s.pending {
		if len(recs) == 0 {
			continue
		}
		_, paused := s.paused[tp]
		_, bypass := s.ignorePause[tp]
		if paused && !bypass {
			continue
		}
		result.Records[tp] = recs
		delete(s.pending, tp)
	}
	return result, nil
}

func (s *stubClient) CommitOffsetsAsync(offsets map[driver.TopicPartition]driver.Offset, onDone func(map[driver.TopicPartition]driver.OffsetAndMetadata, error)) {
	s.mu.Lock()
	s.commits = append(s.commits, offsets)
	delay := s.commitDelay
	commitErr := s.commitErr
	s.mu.Unlock()

	go func() {
		if delay != nil {
			<-delay
		}
		if commitErr != nil {
			onDone(nil, commitErr)
			return
		}
		committed := make(map[driver.TopicPartition]driver.OffsetAndMetadata, len(offsets))
		for tp, off := range offsets {
			committed[tp] = driver.OffsetAndMetadata{Offset: off}
		}
		onDone(committed, nil)
	}()
}

func (s *stubClient) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// --- test helpers below, not part of the Client interface ---

func (s *stubClient) stageRecords(tp driver.TopicPartition, records ...driver.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[tp] = append(s.pending[tp], records...)
}

// stageRecordsBypassingPause simulates a misbehaving client delivering
// records for a paused partition, to drive the invariant-violation path.
func (s *stubClient) stageRecordsBypassingPause(tp driver.TopicPartition, records ...driver.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ignorePause[tp] = struct{}{}
	s.pending[tp] = append(s.pending[tp], records...)
}

func (s *stubClient) triggerRebalance(assigned, revoked []driver.TopicPartition) {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if len(assigned) > 0 && listener.OnAssigned != nil {
		listener.OnAssigned(context.Background(), assigned)
	}
	if len(revoked) > 0 && listener.OnRevoked != nil {
		listener.OnRevoked(context.Background(), revoked)
	}
}

func (s *stubClient) isPaused(tp driver.TopicPartition) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.paused[tp]
	return ok
}

func (s *stubClient) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *stubClient) commitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commits)
}
