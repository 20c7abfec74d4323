// Package kafka holds the types and sentinel errors shared by this
// module's Kafka-facing code: Message and Header, the Handler and
// StartOffset types, and errors such as ErrClosed and ErrNoBrokers. It
// contains no producer or consumer implementation of its own.
//
// The consumer side lives in kafka/driver: it multiplexes polling and
// commits of one consumer client across any number of demand-driven
// requesters behind one mailbox-actor interface.
//
// Example:
//
//	msg := kafka.Message{Topic: "orders", Key: []byte("key"), Value: []byte("value")}
package kafka
