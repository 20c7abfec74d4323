package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/pkg/errors"

	"github.com/nagyist/reactive-kafka/pipeline"
	"github.com/nagyist/reactive-kafka/protocol"
)

const (
	fsmStateRunning  = "running"
	fsmStateDraining = "draining"
	fsmStateStopped  = "stopped"

	fsmEventStopImmediate = "stop_immediate"
	fsmEventStopDrain     = "stop_drain"
	fsmEventDrained       = "drained"
)

// AuditSink receives a best-effort notification whenever a commit
// callback comes back with an error. Never consulted for correctness —
// a write failure here must never become a reason the driver itself
// fails (offsets live in Kafka, not in the sink; see Non-goals).
type AuditSink interface {
	RecordCommitFailure(ctx context.Context, instanceID string, offsets map[TopicPartition]Offset, cause error)
}

// Driver is the single-threaded Kafka consumer driver actor. It owns one
// Kafka consumer client and multiplexes polling, assignment,
// subscription, fetch-on-demand, and async commits across many
// downstream requesters. Driver implements protocol.Lifecycle.
type Driver struct {
	id  string
	log protocol.Logger

	settings settings

	// mailbox and lifecycle plumbing. mailbox is unbuffered so sends
	// from callers block until the mailbox goroutine dequeues them —
	// the back-pressure point the design calls for.
	mailbox    chan command
	terminated chan struct{} // closed once the mailbox goroutine has fully shut down
	runDone    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool

	pollTicker *time.Ticker
	tickerStop chan struct{}

	fsmachine *fsm.FSM

	// Fields below are mutated exclusively by the mailbox goroutine
	// (invariant 1 of the design): client, registry, commitsInProgress,
	// stopInProgress.
	client            Client
	registry          *registry
	commitsInProgress int
	stopInProgress    bool
	shouldTerminate   bool

	fatalErrMu sync.Mutex
	fatalErr   error

	audit AuditSink

	// presetClient, when set via WithClient, is used instead of building
	// a kgoClient from settings — the seam tests drive with a stub.
	presetClient Client
}

// New creates a Driver with the given options. The underlying Kafka
// client is not created until Start.
func New(options ...Option) (*Driver, error) {
	d := &Driver{
		id: uuid.NewString(),
	}

	for _, option := range append(defaultOptions(), options...) {
		if err := option(d); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if d.log == nil {
		return nil, errors.New("empty logger")
	}
	if d.presetClient == nil {
		if err := d.settings.validate(); err != nil {
			return nil, errors.Wrap(err, "invalid settings")
		}
	}

	d.fsmachine = fsm.NewFSM(
		fsmStateRunning,
		fsm.Events{
			{Name: fsmEventStopImmediate, Src: []string{fsmStateRunning}, Dst: fsmStateStopped},
			{Name: fsmEventStopDrain, Src: []string{fsmStateRunning}, Dst: fsmStateDraining},
			{Name: fsmEventDrained, Src: []string{fsmStateDraining}, Dst: fsmStateStopped},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				d.log.Debug(d.ctx, "driver fsm transition", "from", e.Src, "to", e.Dst, "id", d.id)
			},
		},
	)

	return d, nil
}

// ID returns this driver instance's unique identifier, useful for
// correlating log lines and audit rows when several drivers run in one
// process.
func (d *Driver) ID() string { return d.id }

// FSMState reports the driver's Running/Draining/Stopped lifecycle state
// as tracked by fsmachine. stopInProgress/commitsInProgress remain the
// actual gates the mailbox goroutine switches on (they're read on every
// poll cycle, not just at transitions); this is the read side, for
// logging and diagnostics.
func (d *Driver) FSMState() string { return d.fsmachine.Current() }

// Err returns the fatal error that caused the driver to terminate, if
// any. Only meaningful after Done() is closed.
func (d *Driver) Err() error {
	d.fatalErrMu.Lock()
	defer d.fatalErrMu.Unlock()
	return d.fatalErr
}

// Done returns a channel closed once the driver's mailbox goroutine has
// fully terminated, whether due to Stop or a fatal error.
func (d *Driver) Done() <-chan struct{} {
	return d.runDone
}

// Start creates the underlying Kafka client and starts the mailbox
// goroutine and the periodic poll ticker. Implements protocol.Lifecycle.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return errors.New("driver already started")
	}

	client := d.presetClient
	if client == nil {
		created, err := d.settings.createClient()
		if err != nil {
			return errors.Wrap(err, "create kafka client")
		}
		client = created
	}

	d.client = client
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.mailbox = make(chan command)
	d.terminated = make(chan struct{})
	d.runDone = make(chan struct{})
	d.registry = newRegistry(d.mailbox)
	d.commitsInProgress = 0
	d.stopInProgress = false
	d.shouldTerminate = false
	d.started = true

	d.startTicker()

	go func() {
		defer close(d.runDone)
		d.run()
	}()

	d.log.Info(ctx, "driver started", "id", d.id, "dispatcher", d.settings.dispatcher)
	return nil
}

// Stop requests a graceful shutdown: no new work is accepted, in-flight
// commits are allowed to drain, then the ticker is cancelled and the
// client is closed. If ctx is done before draining completes, the
// driver logs how many commits it abandoned and terminates anyway.
// Idempotent.
func (d *Driver) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	d.log.Info(ctx, "stopping driver", "id", d.id)

	forceDone := make(chan struct{})
	go func() {
		defer close(forceDone)
		select {
		case <-ctx.Done():
			d.cancel()
		case <-d.runDone:
		}
	}()

	select {
	case d.mailbox <- cmdStop{}:
	case <-d.runDone:
	}

	<-d.runDone
	<-forceDone

	d.mu.Lock()
	d.started = false
	d.mu.Unlock()

	d.log.Info(ctx, "driver stopped", "id", d.id)
	return nil
}

// run is the mailbox loop: the sole goroutine permitted to touch client,
// registry, commitsInProgress, and stopInProgress.
func (d *Driver) run() {
	for {
		select {
		case cmd := <-d.mailbox:
			d.handle(cmd)
			if d.shouldTerminate {
				d.shutdown()
				return
			}
		case <-d.ctx.Done():
			if d.commitsInProgress > 0 {
				d.log.Warn(d.ctx, "stop deadline exceeded, abandoning in-flight commits",
					"count", d.commitsInProgress, "id", d.id)
			}
			d.shutdown()
			return
		}
	}
}

func (d *Driver) handle(cmd command) {
	switch c := cmd.(type) {
	case cmdAssign:
		if d.rejectIfStopping(nil) {
			return
		}
		d.handleAssign(c)

	case cmdAssignWithOffset:
		if d.rejectIfStopping(nil) {
			return
		}
		d.handleAssignWithOffset(c)

	case cmdSubscribe:
		if d.rejectIfStopping(nil) {
			return
		}
		d.handleSubscribe(c)

	case cmdSubscribePattern:
		if d.rejectIfStopping(nil) {
			return
		}
		d.handleSubscribePattern(c)

	case cmdRequestMessages:
		if d.rejectIfStopping(&c.ReplyTo) {
			return
		}
		d.registry.want(c.Partitions, c.ReplyTo)
		d.poll()

	case cmdCommit:
		d.handleCommit(c)

	case cmdCommitDone:
		d.handleCommitDone(c)

	case cmdPollTick:
		d.poll()

	case cmdRequesterGone:
		d.registry.forget(c.Requester)

	case cmdStop:
		d.handleStop()
	}
}

// rejectIfStopping implements the Running/Stopping acceptance table of
// the mailbox loop: Assign/Subscribe-family messages are dropped with a
// warning while stopping; RequestMessages/Commit are replied to with
// StoppingError (replyTo may be the zero value for messages with no
// reply path).
func (d *Driver) rejectIfStopping(replyTo *Requester) bool {
	if !d.stopInProgress {
		return false
	}
	if replyTo != nil {
		replyTo.reply(FailureEnvelope{Err: StoppingError{}})
	} else {
		d.log.Warn(d.ctx, "dropping message, driver is stopping", "id", d.id)
	}
	return true
}

func (d *Driver) handleStop() {
	if d.stopInProgress {
		return
	}
	d.stopInProgress = true

	if d.commitsInProgress == 0 {
		_ = d.fsmachine.Event(fsmEventStopImmediate)
		d.shouldTerminate = true
		return
	}

	_ = d.fsmachine.Event(fsmEventStopDrain)
	d.log.Info(d.ctx, "draining in-flight commits before stop",
		"count", d.commitsInProgress, "id", d.id)
}

// maybeTerminate is called at the end of every poll cycle: once stopping
// and fully drained, the mailbox loop should exit.
func (d *Driver) maybeTerminate() {
	if d.stopInProgress && d.commitsInProgress == 0 {
		if d.fsmachine.Can(fsmEventDrained) {
			_ = d.fsmachine.Event(fsmEventDrained)
		}
		d.shouldTerminate = true
	}
}

// fail reports a fatal error (ClientError or InvariantViolation) and
// marks the driver for termination; the supervising application decides
// whether to restart it.
func (d *Driver) fail(err error) {
	d.log.Error(d.ctx, "fatal driver error", "err", err, "id", d.id)
	d.fatalErrMu.Lock()
	d.fatalErr = err
	d.fatalErrMu.Unlock()
	d.shouldTerminate = true
}

func (d *Driver) auditCommitFailure(offsets map[TopicPartition]Offset, cause error) {
	if d.audit == nil {
		return
	}
	d.audit.RecordCommitFailure(d.ctx, d.id, offsets, cause)
}

// shutdown runs the termination hook exactly once: cancel the ticker and
// close the client, concurrently since neither depends on the other.
// Runs against context.Background() rather than d.ctx, which is often
// already Done by the time shutdown runs (that's frequently what
// triggered it) and would otherwise race the cleanup funcs themselves.
func (d *Driver) shutdown() {
	close(d.terminated)

	pipeline.New(context.Background(),
		func(context.Context) error { d.stopTicker(); return nil },
		func(context.Context) error { d.client.Close(); return nil },
	).Run(func(err error) {
		if err != nil {
			d.log.Warn(d.ctx, "shutdown cleanup error", "err", err)
		}
	})

	d.registry.stopAll()
}

func (d *Driver) startTicker() {
	d.pollTicker = time.NewTicker(d.settings.pollInterval)
	d.tickerStop = make(chan struct{})

	go func() {
		for {
			select {
			case <-d.pollTicker.C:
				select {
				case d.mailbox <- cmdPollTick{}:
				case <-d.tickerStop:
					return
				}
			case <-d.tickerStop:
				return
			}
		}
	}()
}

func (d *Driver) stopTicker() {
	d.pollTicker.Stop()
	close(d.tickerStop)
}

// send delivers a fire-and-forget command to the mailbox, dropping it
// silently if the driver has already fully terminated.
func (d *Driver) send(cmd command) {
	select {
	case d.mailbox <- cmd:
	case <-d.terminated:
	}
}

// Assign adds partitions to the current assignment, additively: already
// assigned partitions keep their position, new ones start at the broker
// default.
func (d *Driver) Assign(partitions []TopicPartition) {
	d.send(cmdAssign{Partitions: partitions})
}

// AssignWithOffset is Assign followed by a seek to the given offset for
// every entry in offsets.
func (d *Driver) AssignWithOffset(offsets map[TopicPartition]Offset) {
	d.send(cmdAssignWithOffset{Offsets: offsets})
}

// Subscribe replaces the current subscription with topics, installing
// listener as the rebalance callback (wrapped in the auto-pause
// adapter).
func (d *Driver) Subscribe(topics []string, listener RebalanceListener) {
	d.send(cmdSubscribe{Topics: topics, Listener: listener})
}

// SubscribePattern compiles pattern once and replaces the current
// subscription with every topic it matches, the same way Subscribe does
// for an explicit list.
func (d *Driver) SubscribePattern(pattern string, listener RebalanceListener) {
	d.send(cmdSubscribePattern{Pattern: pattern, Listener: listener})
}

// RequestMessages is a one-shot demand signal: the driver will deliver
// at most one Messages envelope per requested partition to replyTo,
// consuming the demand. replyTo must re-issue to keep receiving.
func (d *Driver) RequestMessages(partitions []TopicPartition, replyTo Requester) {
	cmd := cmdRequestMessages{Partitions: partitions, ReplyTo: replyTo}
	select {
	case d.mailbox <- cmd:
	case <-d.terminated:
		replyTo.reply(FailureEnvelope{Err: StoppingError{}})
	}
}

// Commit issues an asynchronous offset commit. replyTo receives a
// CommittedEnvelope on success or a FailureEnvelope wrapping either a
// CommitError or a StoppingError.
func (d *Driver) Commit(offsets map[TopicPartition]Offset, replyTo Requester) {
	cmd := cmdCommit{Offsets: offsets, ReplyTo: replyTo}
	select {
	case d.mailbox <- cmd:
	case <-d.terminated:
		replyTo.reply(FailureEnvelope{Err: StoppingError{}})
	}
}
