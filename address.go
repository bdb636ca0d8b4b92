// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"fmt"
	"time"
)

// Protocol identifies the transport a PeerAddress is reachable over.
type Protocol uint8

// These constants define the set of protocols a PeerAddress may carry.
const (
	// ProtocolWS identifies a direct websocket-style server address.
	ProtocolWS Protocol = 1 << iota

	// ProtocolRTC identifies a browser-relayed WebRTC address, reachable
	// only through a signal channel.
	ProtocolRTC

	// ProtocolDumb identifies a dumb outbound-only client.
	ProtocolDumb
)

// String returns the Protocol as a human-readable name.
func (p Protocol) String() string {
	switch p {
	case ProtocolWS:
		return "ws"
	case ProtocolRTC:
		return "rtc"
	case ProtocolDumb:
		return "dumb"
	default:
		return fmt.Sprintf("unknown protocol (%d)", uint8(p))
	}
}

// MaxAge returns the maximum duration an address of this protocol may go
// unseen before it is considered aged out.
func (p Protocol) MaxAge() time.Duration {
	switch p {
	case ProtocolWS:
		return MaxAgeWS
	case ProtocolRTC:
		return MaxAgeRTC
	case ProtocolDumb:
		return MaxAgeDumb
	default:
		return MaxAgeDumb
	}
}

// MaxFailedAttempts returns the number of consecutive failures this
// protocol tolerates before the peer is escalated to a ban.
func (p Protocol) MaxFailedAttempts() uint32 {
	switch p {
	case ProtocolRTC:
		return MaxFailedAttemptsRTC
	default:
		return MaxFailedAttemptsWS
	}
}

// ServiceFlag is a bitset of services a peer advertises. It is modeled on
// the wire protocol's own service-flag idiom: a small bitwise type with a
// Stringer and an AddService helper, kept local to this package since the
// book never needs the rest of a wire protocol definition.
type ServiceFlag uint64

// AddService returns the ServiceFlag with the given service bit set.
func (s ServiceFlag) AddService(service ServiceFlag) ServiceFlag {
	return s | service
}

// HasAny reports whether s has any bit in common with mask.
func (s ServiceFlag) HasAny(mask ServiceFlag) bool {
	return s&mask != 0
}

// String returns the ServiceFlag as a hexadecimal bitset.
func (s ServiceFlag) String() string {
	return fmt.Sprintf("0x%x", uint64(s))
}

// PeerAddress describes a remote peer's address as reported by a
// transport or learned from another peer. Two PeerAddress values are
// equal iff their IdentityKey fields are equal; every other field may be
// refreshed independently as newer reports arrive.
type PeerAddress struct {
	// Protocol is the transport this address is reachable over.
	Protocol Protocol

	// IdentityKey uniquely identifies the peer. It is the sole field used
	// for equality between two addresses.
	IdentityKey string

	// Services is the bitset of services this peer advertises.
	Services ServiceFlag

	// Timestamp is the last time this address was seen alive. The zero
	// time identifies a seed address.
	Timestamp time.Time

	// NetAddress is an opaque, transport-defined descriptor (host:port,
	// a multiaddr, or similar). The book never parses it; it only
	// preserves it across updates. Nil means unknown.
	NetAddress *string

	// Distance is the number of relay hops to the peer. Only meaningful
	// for ProtocolRTC; zero otherwise. Capped at MaxDistance.
	Distance uint8

	// PeerID identifies the peer within the signalling layer. Only set
	// for ProtocolRTC addresses.
	PeerID *string
}

// Equal reports whether two addresses identify the same peer.
func (a PeerAddress) Equal(other PeerAddress) bool {
	return a.IdentityKey == other.IdentityKey
}

// IsSeed reports whether the address is a built-in bootstrap address.
func (a PeerAddress) IsSeed() bool {
	return a.Timestamp.IsZero()
}

// ExceedsAge reports whether the address has gone unseen for longer than
// its protocol's maximum age, measured from now.
func (a PeerAddress) ExceedsAge(now time.Time) bool {
	return now.Sub(a.Timestamp) > a.Protocol.MaxAge()
}

// Clone returns a copy of the address. NetAddress and PeerID point
// to copies of their pointees so the returned value shares no mutable
// state with the original - the book hands out addresses by value, never
// by reference to its internal records.
func (a PeerAddress) Clone() PeerAddress {
	clone := a
	if a.NetAddress != nil {
		na := *a.NetAddress
		clone.NetAddress = &na
	}
	if a.PeerID != nil {
		pid := *a.PeerID
		clone.PeerID = &pid
	}
	return clone
}
