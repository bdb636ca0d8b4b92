// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"testing"
	"time"
)

func TestRouteSetBestOrdering(t *testing.T) {
	rs := NewRouteSet()
	if rs.HasRoute() || rs.Best() != nil {
		t.Fatalf("expected a new RouteSet to be empty")
	}

	c1 := NewSimpleChannel()
	c2 := NewSimpleChannel()
	c3 := NewSimpleChannel()
	now := time.Unix(1000, 0)

	if !rs.AddRoute(c1, 2, now) {
		t.Fatalf("expected AddRoute to accept distance within cap")
	}
	if rs.Best().SignalChannel.ID() != c1.ID() {
		t.Fatalf("expected sole route to be best")
	}

	// Smaller distance wins outright.
	if !rs.AddRoute(c2, 1, now) {
		t.Fatalf("expected AddRoute to accept distance within cap")
	}
	if rs.Best().SignalChannel.ID() != c2.ID() {
		t.Fatalf("expected lower-distance route to become best")
	}

	// Equal distance, newer timestamp wins.
	if !rs.AddRoute(c3, 1, now.Add(time.Minute)) {
		t.Fatalf("expected AddRoute to accept distance within cap")
	}
	if rs.Best().SignalChannel.ID() != c3.ID() {
		t.Fatalf("expected equal-distance newer route to become best")
	}
}

func TestRouteSetRejectsOverDistance(t *testing.T) {
	rs := NewRouteSet()
	c := NewSimpleChannel()
	if rs.AddRoute(c, MaxDistance+1, time.Unix(0, 0)) {
		t.Errorf("expected AddRoute to reject a distance exceeding MaxDistance")
	}
	if rs.HasRoute() {
		t.Errorf("expected rejected route to not be stored")
	}
}

func TestRouteSetDeleteBestRoute(t *testing.T) {
	rs := NewRouteSet()
	c1 := NewSimpleChannel()
	c2 := NewSimpleChannel()
	now := time.Unix(1000, 0)

	rs.AddRoute(c1, 1, now)
	rs.AddRoute(c2, 2, now)

	rs.DeleteBestRoute()
	if rs.Best().SignalChannel.ID() != c2.ID() {
		t.Fatalf("expected next-best route to take over after deleting the best")
	}

	rs.DeleteBestRoute()
	if rs.HasRoute() || rs.Best() != nil {
		t.Fatalf("expected RouteSet to be empty after deleting its last route")
	}
}

func TestRouteSetDeleteRoute(t *testing.T) {
	rs := NewRouteSet()
	c1 := NewSimpleChannel()
	c2 := NewSimpleChannel()
	now := time.Unix(1000, 0)

	rs.AddRoute(c1, 1, now)
	rs.AddRoute(c2, 3, now)

	rs.DeleteRoute(c2)
	if !rs.HasRoute() {
		t.Fatalf("expected deleting a non-best route to leave the remaining route intact")
	}
	if rs.Best().SignalChannel.ID() != c1.ID() {
		t.Fatalf("expected best route to be unaffected by deleting a different route")
	}

	// Deleting something not present is a no-op.
	rs.DeleteRoute(c2)
	if rs.Best().SignalChannel.ID() != c1.ID() {
		t.Fatalf("expected redundant delete to be a no-op")
	}
}

func TestRouteSetDeleteAll(t *testing.T) {
	rs := NewRouteSet()
	rs.AddRoute(NewSimpleChannel(), 1, time.Unix(0, 0))
	rs.AddRoute(NewSimpleChannel(), 2, time.Unix(0, 0))

	rs.DeleteAll()
	if rs.HasRoute() || rs.Best() != nil {
		t.Errorf("expected DeleteAll to empty the set")
	}
}

func TestRouteSetRefreshBestTimestamp(t *testing.T) {
	rs := NewRouteSet()
	c := NewSimpleChannel()
	rs.AddRoute(c, 1, time.Unix(0, 0))

	later := time.Unix(5000, 0)
	rs.RefreshBestTimestamp(later)
	if !rs.Best().Timestamp.Equal(later) {
		t.Errorf("expected RefreshBestTimestamp to update the best route's timestamp")
	}
}
