package driver

import "context"

// autoPause wraps a user-supplied RebalanceListener so that any partition
// the broker just assigned is paused on the client before the user's
// OnAssigned hook runs. A freshly assigned partition has no outstanding
// RequestMessages yet, so it must not be fetched until a downstream
// actually demands it — the next poll cycle resumes only partitions
// present in requests.
func (d *Driver) autoPause(user RebalanceListener) RebalanceListener {
	return RebalanceListener{
		OnAssigned: func(ctx context.Context, assigned []TopicPartition) {
			d.client.Pause(assigned)
			user.assigned(ctx, assigned)
		},
		OnRevoked: func(ctx context.Context, revoked []TopicPartition) {
			user.revoked(ctx, revoked)
		},
	}
}

func (d *Driver) handleAssign(c cmdAssign) {
	if err := d.client.Assign(c.Partitions); err != nil {
		d.fail(&ClientError{Op: "assign", Err: err})
		return
	}
}

func (d *Driver) handleAssignWithOffset(c cmdAssignWithOffset) {
	parts := make([]TopicPartition, 0, len(c.Offsets))
	for tp := range c.Offsets {
		parts = append(parts, tp)
	}
	if err := d.client.Assign(parts); err != nil {
		d.fail(&ClientError{Op: "assign", Err: err})
		return
	}
	for tp, off := range c.Offsets {
		if err := d.client.SeekPartition(tp, off); err != nil {
			d.fail(&ClientError{Op: "seek", Err: err})
			return
		}
	}
}

func (d *Driver) handleSubscribe(c cmdSubscribe) {
	if err := d.client.Subscribe(c.Topics, d.autoPause(c.Listener)); err != nil {
		d.fail(&ClientError{Op: "subscribe", Err: err})
	}
}

func (d *Driver) handleSubscribePattern(c cmdSubscribePattern) {
	if err := d.client.SubscribePattern(c.Pattern, d.autoPause(c.Listener)); err != nil {
		d.fail(&ClientError{Op: "subscribe_pattern", Err: err})
	}
}
