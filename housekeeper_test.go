// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestHousekeeperAgesOutStaleNew(t *testing.T) {
	mock := clock.NewMock()
	b := newTestBook(t, mock)

	a := PeerAddress{Protocol: ProtocolWS, IdentityKey: "A", Timestamp: mock.Now()}
	b.Add(nil, a)

	mock.Add(MaxAgeWS + time.Second)
	NewHousekeeper(b).Tick(mock.Now())

	if b.store.Get("A") != nil {
		t.Errorf("expected a stale New record to be removed by housekeeping")
	}
}

func TestHousekeeperNeverAgesOutSeeds(t *testing.T) {
	mock := clock.NewMock()
	b := newTestBook(t, mock)

	seed := PeerAddress{Protocol: ProtocolWS, IdentityKey: "S"}
	b.Add(nil, seed)

	mock.Add(10 * MaxAgeWS)
	NewHousekeeper(b).Tick(mock.Now())

	if b.store.Get("S") == nil {
		t.Errorf("expected a seed to survive housekeeping regardless of age")
	}
}

func TestHousekeeperNeverTouchesConnectingOrConnected(t *testing.T) {
	mock := clock.NewMock()
	b := newTestBook(t, mock)

	connecting := PeerAddress{Protocol: ProtocolWS, IdentityKey: "C1", Timestamp: mock.Now()}
	b.Add(nil, connecting)
	b.Connecting(connecting)

	connected := PeerAddress{Protocol: ProtocolWS, IdentityKey: "C2", Timestamp: mock.Now()}
	b.Connected(NewSimpleChannel(), connected)

	mock.Add(10 * MaxAgeWS)
	NewHousekeeper(b).Tick(mock.Now())

	if rec := b.store.Get("C1"); rec == nil || rec.State != StateConnecting {
		t.Errorf("expected a Connecting record to survive housekeeping untouched, got %v", rec)
	}
	if rec := b.store.Get("C2"); rec == nil || rec.State != StateConnected {
		t.Errorf("expected a Connected record to survive housekeeping untouched, got %v", rec)
	}
}

func TestHousekeeperDirectBanIsRemovedNotReset(t *testing.T) {
	mock := clock.NewMock()
	b := newTestBook(t, mock)

	a := PeerAddress{Protocol: ProtocolWS, IdentityKey: "A", Timestamp: mock.Now()}
	b.Add(nil, a)
	b.Ban(a, time.Minute)

	mock.Add(time.Minute + time.Second)
	NewHousekeeper(b).Tick(mock.Now())

	if b.store.Get("A") != nil {
		t.Errorf("expected a directly banned (non-escalation, non-seed) record to be removed once its ban lapses")
	}
}

func TestHousekeeperTickIsIdempotentWhenNothingExpired(t *testing.T) {
	mock := clock.NewMock()
	b := newTestBook(t, mock)

	a := PeerAddress{Protocol: ProtocolWS, IdentityKey: "A", Timestamp: mock.Now()}
	b.Add(nil, a)

	NewHousekeeper(b).Tick(mock.Now())
	if b.store.Get("A") == nil {
		t.Errorf("expected a fresh record to survive a sweep with nothing expired")
	}
}
