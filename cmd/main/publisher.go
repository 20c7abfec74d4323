package main

import (
	"context"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/nagyist/reactive-kafka/kafka"
)

// publisher is the one-shot producer side of the driver demo: a single
// *kgo.Client producing records, with none of producer.Producer's
// options/Config/ProduceSync surface this program never calls. It
// implements protocol.Lifecycle so application.Application can manage it
// alongside messagesDriver.
type publisher struct {
	cl *kgo.Client

	mu     sync.RWMutex
	closed bool
}

func newPublisher(brokers []string) (*publisher, error) {
	cl, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, err
	}
	return &publisher{cl: cl}, nil
}

// Produce sends a message asynchronously; callback is invoked on
// completion or error. If the publisher is closed, callback receives
// kafka.ErrClosed immediately.
func (p *publisher) Produce(ctx context.Context, msg kafka.Message, callback func(*kafka.Message, error)) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		if callback != nil {
			callback(&msg, kafka.ErrClosed)
		}
		return
	}
	p.mu.RUnlock()

	headers := make([]kgo.RecordHeader, len(msg.Headers))
	for i, h := range msg.Headers {
		headers[i] = kgo.RecordHeader{Key: h.Key, Value: h.Value}
	}
	record := &kgo.Record{Topic: msg.Topic, Partition: msg.Partition, Key: msg.Key, Value: msg.Value, Headers: headers}

	p.cl.Produce(ctx, record, func(r *kgo.Record, err error) {
		if callback == nil {
			return
		}
		var got kafka.Message
		if r != nil {
			got = kafka.Message{Key: r.Key, Value: r.Value, Topic: r.Topic, Partition: r.Partition}
		}
		callback(&got, err)
	})
}

// Start implements protocol.Lifecycle; the client is ready immediately.
func (p *publisher) Start(context.Context) error { return nil }

// Stop implements protocol.Lifecycle. Idempotent.
func (p *publisher) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.cl.Close()
	return nil
}
