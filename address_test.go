// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"testing"
	"time"
)

func TestPeerAddressEqual(t *testing.T) {
	a := PeerAddress{IdentityKey: "peer-a", Protocol: ProtocolWS}
	b := PeerAddress{IdentityKey: "peer-a", Protocol: ProtocolRTC, Distance: 3}
	c := PeerAddress{IdentityKey: "peer-c"}

	if !a.Equal(b) {
		t.Errorf("expected addresses sharing an identity key to be equal")
	}
	if a.Equal(c) {
		t.Errorf("expected addresses with different identity keys to be unequal")
	}
}

func TestPeerAddressIsSeed(t *testing.T) {
	seed := PeerAddress{IdentityKey: "seed1"}
	if !seed.IsSeed() {
		t.Errorf("expected zero-timestamp address to be a seed")
	}

	notSeed := PeerAddress{IdentityKey: "peer", Timestamp: time.Unix(1, 0)}
	if notSeed.IsSeed() {
		t.Errorf("expected non-zero-timestamp address to not be a seed")
	}
}

func TestPeerAddressExceedsAge(t *testing.T) {
	now := time.Unix(10000, 0)
	tests := []struct {
		name     string
		protocol Protocol
		age      time.Duration
		want     bool
	}{
		{"ws within age", ProtocolWS, MaxAgeWS - time.Second, false},
		{"ws past age", ProtocolWS, MaxAgeWS + time.Second, true},
		{"rtc within age", ProtocolRTC, MaxAgeRTC - time.Second, false},
		{"rtc past age", ProtocolRTC, MaxAgeRTC + time.Second, true},
		{"dumb within age", ProtocolDumb, MaxAgeDumb - time.Second, false},
		{"dumb past age", ProtocolDumb, MaxAgeDumb + time.Second, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			addr := PeerAddress{Protocol: test.protocol, Timestamp: now.Add(-test.age)}
			if got := addr.ExceedsAge(now); got != test.want {
				t.Errorf("ExceedsAge() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestPeerAddressClone(t *testing.T) {
	na := "host:1234"
	pid := "peer-id"
	orig := PeerAddress{
		IdentityKey: "peer",
		NetAddress:  &na,
		PeerID:      &pid,
	}

	clone := orig.Clone()
	if clone.NetAddress == orig.NetAddress {
		t.Errorf("expected clone to copy NetAddress pointer, not alias it")
	}
	if clone.PeerID == orig.PeerID {
		t.Errorf("expected clone to copy PeerID pointer, not alias it")
	}
	if *clone.NetAddress != *orig.NetAddress || *clone.PeerID != *orig.PeerID {
		t.Errorf("expected clone to retain equal pointee values")
	}
}

func TestServiceFlagHasAny(t *testing.T) {
	var s ServiceFlag
	s = s.AddService(1).AddService(4)

	if !s.HasAny(4) {
		t.Errorf("expected HasAny to find a bit present in the set")
	}
	if s.HasAny(2) {
		t.Errorf("expected HasAny to reject a bit absent from the set")
	}
	if s.HasAny(0) {
		t.Errorf("expected a zero mask to match nothing via HasAny directly; callers treat zero as wildcard themselves")
	}
}
