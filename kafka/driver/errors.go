package driver

import "fmt"

// StoppingError is returned to callers of RequestMessages or Commit once
// the driver has begun (or finished) stopping.
type StoppingError struct{}

func (StoppingError) Error() string { return "driver is stopping" }

// ClientError wraps a failure raised by the underlying Kafka client
// during assign, subscribe, seek, or poll. ClientError is fatal: the
// driver logs it and terminates, leaving restart decisions to its
// supervisor.
type ClientError struct {
	Op  string
	Err error
}

func (e *ClientError) Error() string { return fmt.Sprintf("kafka client %s: %v", e.Op, e.Err) }
func (e *ClientError) Unwrap() error { return e.Err }

// CommitError reports a commit callback that completed with a non-nil
// exception. It is delivered only to the Commit call that issued the
// failing commit; the driver itself continues running.
type CommitError struct {
	Offsets map[TopicPartition]Offset
	Err     error
}

func (e *CommitError) Error() string { return fmt.Sprintf("commit failed: %v", e.Err) }
func (e *CommitError) Unwrap() error { return e.Err }

// InvariantViolation indicates the underlying client returned records
// for a partition it should not have (not in the requested fetch set, or
// fetched while no demand existed). It is fatal: it means either a bug
// in this driver or a broken client contract, and the driver terminates
// rather than risk delivering misrouted records.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string { return "invariant violation: " + e.Reason }
