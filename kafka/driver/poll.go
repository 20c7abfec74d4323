package driver

import "time"

const (
	noDemandSpinIterations = 10
	noDemandSpinDelay      = 10 * time.Microsecond
	noDemandLastResortPoll = 1 * time.Millisecond
)

// poll is the poll engine: it runs on every internal tick, immediately
// after RequestMessages, and immediately after issuing a Commit.
func (d *Driver) poll() {
	toFetch := d.registry.fetchSet()
	d.reconcilePauseState(toFetch)

	if len(toFetch) == 0 {
		d.pollNoDemand()
	} else {
		d.pollWithDemand(toFetch)
	}

	d.maybeTerminate()
}

// reconcilePauseState is the single authoritative place pause/resume is
// applied: every currently assigned partition is resumed if it's in
// toFetch, paused otherwise.
func (d *Driver) reconcilePauseState(toFetch []TopicPartition) {
	want := make(map[TopicPartition]struct{}, len(toFetch))
	for _, tp := range toFetch {
		want[tp] = struct{}{}
	}

	var toResume, toPause []TopicPartition
	for _, tp := range d.client.CurrentAssignment() {
		if _, wanted := want[tp]; wanted {
			toResume = append(toResume, tp)
		} else {
			toPause = append(toPause, tp)
		}
	}

	d.client.Resume(toResume)
	d.client.Pause(toPause)
}

// pollNoDemand drives the client with no outstanding demand so in-flight
// commit callbacks still fire. A non-empty result here means pausing
// failed — that's a driver or client bug, not a recoverable condition.
func (d *Driver) pollNoDemand() {
	result, err := d.client.PollFetches(0)
	if err != nil {
		d.fail(&ClientError{Op: "poll", Err: err})
		return
	}
	if len(result.Partitions()) > 0 {
		d.fail(&InvariantViolation{Reason: "records arrived for no demand"})
		return
	}

	if d.commitsInProgress == 0 {
		return
	}

	for i := 0; i < noDemandSpinIterations && d.commitsInProgress > 0; i++ {
		time.Sleep(noDemandSpinDelay)
		if _, err := d.client.PollFetches(0); err != nil {
			d.fail(&ClientError{Op: "poll", Err: err})
			return
		}
	}
	if d.commitsInProgress > 0 {
		if _, err := d.client.PollFetches(noDemandLastResortPoll); err != nil {
			d.fail(&ClientError{Op: "poll", Err: err})
			return
		}
	}
}

// pollWithDemand fetches for up to pollTimeout, dispatches any records to
// their requesters, and clears demand for every partition that produced
// records.
func (d *Driver) pollWithDemand(toFetch []TopicPartition) {
	result, err := d.client.PollFetches(d.settings.pollTimeout)
	if err != nil {
		d.fail(&ClientError{Op: "poll", Err: err})
		return
	}

	if len(result.Records) == 0 {
		return
	}

	wanted := make(map[TopicPartition]struct{}, len(toFetch))
	for _, tp := range toFetch {
		wanted[tp] = struct{}{}
	}
	for tp := range result.Records {
		if _, ok := wanted[tp]; !ok {
			d.fail(&InvariantViolation{Reason: "unexpected partition " + tp.Topic})
			return
		}
	}

	var produced []TopicPartition
	byRequester := d.registry.byRequester()
	for requester, parts := range byRequester {
		var iterators []RecordIterator
		var partsWithRecords []TopicPartition
		for _, tp := range parts {
			recs := result.Records[tp]
			if len(recs) == 0 {
				continue
			}
			iterators = append(iterators, newSliceIterator(recs))
			partsWithRecords = append(partsWithRecords, tp)
		}
		if len(iterators) == 0 {
			continue
		}
		requester.reply(MessagesEnvelope{records: newConcatIterator(iterators...)})
		produced = append(produced, partsWithRecords...)
	}

	d.registry.clearDelivered(produced)
}
