// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import "time"

// State is one of the peer record's lifecycle states.
type State uint8

// These constants enumerate every state a PeerRecord may be in.
const (
	StateNew State = iota
	StateConnecting
	StateConnected
	StateTried
	StateFailed
	StateBanned
)

// String returns the State as a human-readable name.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateTried:
		return "tried"
	case StateFailed:
		return "failed"
	case StateBanned:
		return "banned"
	default:
		return "unknown"
	}
}

// Event is the closed set of inputs the state machine's reducer accepts.
// Per the redesign away from dispatching on method identity, every event
// is an explicit tagged value instead of a bare function reference, which
// lets reduce switch over it exhaustively.
type Event interface {
	isEvent()
}

// EventConnecting reports that a connection attempt to the peer has
// begun.
type EventConnecting struct{}

// EventConnected reports that a connection to the peer, over channel, is
// now established.
type EventConnected struct{ Channel Channel }

// EventDisconnected reports that the connection to the peer over channel
// has ended.
type EventDisconnected struct{ Channel Channel }

// EventFailure reports that a connection attempt to the peer failed.
type EventFailure struct{}

// EventUnroutable reports that channel can no longer relay to the peer.
type EventUnroutable struct{ Channel Channel }

// EventBan reports that the peer should be excluded from dialing and
// inbound acceptance for the given duration.
type EventBan struct{ Duration time.Duration }

func (EventConnecting) isEvent()   {}
func (EventConnected) isEvent()    {}
func (EventDisconnected) isEvent() {}
func (EventFailure) isEvent()      {}
func (EventUnroutable) isEvent()   {}
func (EventBan) isEvent()          {}

// reduce applies event to state and returns the resulting state and
// whether the transition is legal. When ok is false the event had no
// observable effect and the caller must treat the call as a no-op; when
// ok is true but the returned state equals state, the transition is a
// legal "stay" (the table's "—" cells) and any event-specific counters
// still update even though the state itself does not move.
func reduce(state State, event Event) (State, bool) {
	switch state {
	case StateNew:
		switch event.(type) {
		case EventConnecting:
			return StateConnecting, true
		case EventConnected:
			return StateConnected, true
		case EventDisconnected:
			return state, false
		case EventFailure:
			return StateFailed, true
		case EventUnroutable:
			return state, true
		case EventBan:
			return StateBanned, true
		}
	case StateConnecting:
		switch event.(type) {
		case EventConnecting:
			return state, true
		case EventConnected:
			return StateConnected, true
		case EventDisconnected:
			return StateTried, true
		case EventFailure:
			return StateFailed, true
		case EventUnroutable:
			return state, true
		case EventBan:
			return StateBanned, true
		}
	case StateConnected:
		switch event.(type) {
		case EventConnecting:
			return state, false
		case EventConnected:
			return state, true
		case EventDisconnected:
			return StateTried, true
		case EventFailure:
			return StateFailed, true
		case EventUnroutable:
			return state, true
		case EventBan:
			return StateBanned, true
		}
	case StateTried:
		switch event.(type) {
		case EventConnecting:
			return StateConnecting, true
		case EventConnected:
			return StateConnected, true
		case EventDisconnected:
			return state, true
		case EventFailure:
			return StateFailed, true
		case EventUnroutable:
			return state, true
		case EventBan:
			return StateBanned, true
		}
	case StateFailed:
		switch event.(type) {
		case EventConnecting:
			return StateConnecting, true
		case EventConnected:
			return StateConnected, true
		case EventDisconnected:
			return state, true
		case EventFailure:
			return StateFailed, true
		case EventUnroutable:
			return state, true
		case EventBan:
			return StateBanned, true
		}
	case StateBanned:
		switch event.(type) {
		case EventConnecting:
			return state, false
		case EventConnected:
			return state, false
		case EventDisconnected:
			return state, false
		case EventFailure:
			return state, false
		case EventUnroutable:
			return state, false
		case EventBan:
			return StateBanned, true
		}
	}
	return state, false
}

// PeerRecord tracks everything the book knows about one peer: its most
// recently reported address, its state machine position, failure and ban
// bookkeeping, and - for WebRTC peers - its set of relay routes.
type PeerRecord struct {
	Address           PeerAddress
	State             State
	FailedAttempts    uint32
	MaxFailedAttempts uint32
	BannedUntil       *time.Time
	BanBackoff        time.Duration
	LastConnected     *time.Time
	LastAttempt       *time.Time
	Routes            *RouteSet
}

// NewPeerRecord creates a fresh, New-state record for addr. A RouteSet is
// only allocated for RTC addresses; WS and DUMB records never carry
// routes.
func NewPeerRecord(addr PeerAddress) *PeerRecord {
	rec := &PeerRecord{
		Address:           addr,
		State:             StateNew,
		MaxFailedAttempts: addr.Protocol.MaxFailedAttempts(),
		BanBackoff:        InitialFailedBackoff,
	}
	if addr.Protocol == ProtocolRTC {
		rec.Routes = NewRouteSet()
	}
	return rec
}

// IsSeed reports whether the record's address is a seed.
func (r *PeerRecord) IsSeed() bool {
	return r.Address.IsSeed()
}
