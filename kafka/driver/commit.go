package driver

// cmdCommitDone carries a commit callback's result back into the
// mailbox. franz-go's CommitOffsetsAsync invokes its callback from the
// client's own internal goroutine, not necessarily the goroutine that
// called PollFetches — unlike the Java client's same-thread guarantee
// the original design leans on. Routing the result through the mailbox
// channel (instead of mutating driver state directly from that
// goroutine) restores the single-writer invariant without a mutex.
type cmdCommitDone struct {
	offsets   map[TopicPartition]Offset
	replyTo   Requester
	committed map[TopicPartition]OffsetAndMetadata
	err       error
}

func (cmdCommitDone) isCommand() {}

func (d *Driver) handleCommit(c cmdCommit) {
	if d.stopInProgress {
		c.ReplyTo.reply(FailureEnvelope{Err: StoppingError{}})
		return
	}

	d.commitsInProgress++
	offsets, replyTo := c.Offsets, c.ReplyTo

	d.client.CommitOffsetsAsync(offsets, func(committed map[TopicPartition]OffsetAndMetadata, err error) {
		done := cmdCommitDone{offsets: offsets, replyTo: replyTo, committed: committed, err: err}
		select {
		case d.mailbox <- done:
		case <-d.terminated:
		}
	})

	d.poll()
}

func (d *Driver) handleCommitDone(c cmdCommitDone) {
	d.commitsInProgress--
	defer d.maybeTerminate()

	if c.err != nil {
		d.log.Warn(d.ctx, "commit failed", "err", c.err, "dispatcher", d.settings.dispatcher)
		d.auditCommitFailure(c.offsets, c.err)
		c.replyTo.reply(FailureEnvelope{Err: &CommitError{Offsets: c.offsets, Err: c.err}})
		return
	}

	c.replyTo.reply(CommittedEnvelope{Offsets: c.committed})
}
