// Package driver implements the single-threaded Kafka consumer driver
// actor: one goroutine owns one Kafka consumer client and multiplexes its
// cooperative polling, partition assignment, subscription, fetch-on-demand
// and asynchronous offset commits across many independent downstream
// consumers.
//
// The underlying client is not thread-safe and couples fetching, commit
// callbacks, and rebalance callbacks on a single call path (poll). Driver
// hides that behind a mailbox: callers never touch the client directly,
// they send commands and receive envelopes on a reply channel.
//
// Example:
//
//	base, err := logger.New()
//	d, err := driver.New(
//	    driver.WithBrokers("localhost:9092"),
//	    driver.WithGroupID("orders-consumer"),
//	    driver.WithLogger(base.New("driver")),
//	)
//	d.Start(ctx)
//	d.Assign([]driver.TopicPartition{{Topic: "orders", Partition: 0}})
//
//	replies := make(chan driver.Envelope, 1)
//	done := make(chan struct{})
//	d.RequestMessages([]driver.TopicPartition{{Topic: "orders", Partition: 0}},
//	    driver.Requester{Replies: replies, Done: done})
//
//	switch env := (<-replies).(type) {
//	case driver.MessagesEnvelope:
//	    // consume env.Records(), then re-issue RequestMessages for more
//	}
package driver
