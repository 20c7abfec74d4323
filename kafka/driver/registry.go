package driver

// registry tracks which requester is awaiting records for which
// partition, and which requesters are currently being watched for
// liveness. Every method is called only from the mailbox goroutine.
type registry struct {
	requests map[TopicPartition]Requester
	watched  map[Requester]chan struct{} // value: stop signal for the watcher goroutine
	mailbox  chan<- command
}

func newRegistry(mailbox chan<- command) *registry {
	return &registry{
		requests: make(map[TopicPartition]Requester),
		watched:  make(map[Requester]chan struct{}),
		mailbox:  mailbox,
	}
}

// want adds an entry for every partition in parts, overwriting any
// existing requester (latest wins), and starts watching the requester's
// liveness if it isn't already watched.
func (r *registry) want(parts []TopicPartition, by Requester) {
	for _, tp := range parts {
		r.requests[tp] = by
	}
	r.watch(by)
}

func (r *registry) watch(req Requester) {
	if _, ok := r.watched[req]; ok {
		return
	}
	stop := make(chan struct{})
	r.watched[req] = stop
	go func() {
		select {
		case <-req.Done:
			select {
			case r.mailbox <- cmdRequesterGone{Requester: req}:
			case <-stop:
			}
		case <-stop:
		}
	}()
}

// forget removes every request entry belonging to req and stops watching
// it. This is the non-inverted purge spec.md §9 calls for: entries whose
// requester equals the terminated one are dropped, not kept.
func (r *registry) forget(req Requester) {
	for tp, owner := range r.requests {
		if owner == req {
			delete(r.requests, tp)
		}
	}
	if stop, ok := r.watched[req]; ok {
		close(stop)
		delete(r.watched, req)
	}
}

// clearDelivered removes every partition in parts from requests — the
// demand these partitions represented has just been satisfied.
func (r *registry) clearDelivered(parts []TopicPartition) {
	for _, tp := range parts {
		delete(r.requests, tp)
	}
}

// fetchSet returns the partitions currently wanted by some live
// requester.
func (r *registry) fetchSet() []TopicPartition {
	out := make([]TopicPartition, 0, len(r.requests))
	for tp := range r.requests {
		out = append(out, tp)
	}
	return out
}

// byRequester groups the current requests by requester, so the poll
// engine can build one Messages envelope per requester per cycle.
func (r *registry) byRequester() map[Requester][]TopicPartition {
	out := make(map[Requester][]TopicPartition)
	for tp, req := range r.requests {
		out[req] = append(out[req], tp)
	}
	return out
}

// stopAll closes every outstanding watcher goroutine. Called once from
// the termination hook.
func (r *registry) stopAll() {
	for req, stop := range r.watched {
		close(stop)
		delete(r.watched, req)
	}
}
