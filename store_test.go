// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import "testing"

func TestAddressStoreBasics(t *testing.T) {
	s := NewAddressStore()
	if s.Len() != 0 {
		t.Fatalf("expected a new store to be empty")
	}

	rec := NewPeerRecord(PeerAddress{IdentityKey: "peer-a"})
	s.Insert(rec)
	if s.Len() != 1 {
		t.Errorf("expected Insert to grow the store")
	}
	if got := s.Get("peer-a"); got != rec {
		t.Errorf("expected Get to return the inserted record")
	}
	if got := s.Get("missing"); got != nil {
		t.Errorf("expected Get of an unknown key to return nil, got %v", got)
	}

	s.Remove("peer-a")
	if s.Len() != 0 {
		t.Errorf("expected Remove to shrink the store")
	}
	if got := s.Get("peer-a"); got != nil {
		t.Errorf("expected removed record to no longer be retrievable")
	}
}

func TestAddressStorePeerIDIndex(t *testing.T) {
	s := NewAddressStore()
	rec := NewPeerRecord(PeerAddress{IdentityKey: "rtc-peer", Protocol: ProtocolRTC})
	s.Insert(rec)
	s.PutPeerID("signal-id", "rtc-peer")

	if got := s.ByPeerID("signal-id"); got != rec {
		t.Errorf("expected ByPeerID to resolve through the secondary index")
	}

	s.RemovePeerID("signal-id")
	if got := s.ByPeerID("signal-id"); got != nil {
		t.Errorf("expected ByPeerID to return nil after RemovePeerID, got %v", got)
	}
}

func TestAddressStoreConnectingCount(t *testing.T) {
	s := NewAddressStore()
	if s.ConnectingCount() != 0 {
		t.Fatalf("expected a new store to have zero connecting records")
	}

	s.incConnecting()
	s.incConnecting()
	if s.ConnectingCount() != 2 {
		t.Errorf("expected ConnectingCount to reflect two increments")
	}

	s.decConnecting()
	if s.ConnectingCount() != 1 {
		t.Errorf("expected ConnectingCount to reflect one decrement")
	}

	// Never goes negative.
	s.decConnecting()
	s.decConnecting()
	if s.ConnectingCount() != 0 {
		t.Errorf("expected ConnectingCount to floor at zero, got %d", s.ConnectingCount())
	}
}

func TestAddressStoreValues(t *testing.T) {
	s := NewAddressStore()
	s.Insert(NewPeerRecord(PeerAddress{IdentityKey: "a"}))
	s.Insert(NewPeerRecord(PeerAddress{IdentityKey: "b"}))
	s.Insert(NewPeerRecord(PeerAddress{IdentityKey: "c"}))

	values := s.Values()
	if len(values) != 3 {
		t.Fatalf("expected Values to return every stored record, got %d", len(values))
	}
}
