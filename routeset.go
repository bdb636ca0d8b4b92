// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import "time"

// Route describes one relay path to a WebRTC peer: the signal channel it
// was learned over, the hop distance through that relay, and the last
// time the route was refreshed.
type Route struct {
	SignalChannel Channel
	Distance      uint8
	Timestamp     time.Time
}

// RouteSet is the per-record collection of relay routes to a WebRTC peer,
// keyed by signal channel identity. It caches the current best route so
// that repeated lookups (query, dialing) do not have to rescan the set.
type RouteSet struct {
	routes map[string]*Route
	best   *Route
}

// NewRouteSet returns an empty RouteSet.
func NewRouteSet() *RouteSet {
	return &RouteSet{routes: make(map[string]*Route)}
}

// HasRoute reports whether the set holds any route.
func (rs *RouteSet) HasRoute() bool {
	return len(rs.routes) > 0
}

// Best returns the current best route, or nil if the set is empty. The
// invariant best == nil iff the set is empty holds by construction:
// best is assigned only by recomputeBest, which always derives its result
// from the current contents of routes, and by DeleteAll, which empties
// routes and clears best together.
func (rs *RouteSet) Best() *Route {
	return rs.best
}

// AddRoute upserts the route for signalChannel, keyed by channel identity,
// and re-evaluates the best route. Routes whose distance exceeds
// MaxDistance are rejected outright and never enter the set.
func (rs *RouteSet) AddRoute(signalChannel Channel, distance uint8, timestamp time.Time) bool {
	if distance > MaxDistance {
		return false
	}
	rs.routes[signalChannel.ID()] = &Route{
		SignalChannel: signalChannel,
		Distance:      distance,
		Timestamp:     timestamp,
	}
	rs.recomputeBest()
	return true
}

// DeleteRoute removes the route learned over signalChannel, if any, and
// re-evaluates the best route. It is a no-op if no such route exists.
func (rs *RouteSet) DeleteRoute(signalChannel Channel) {
	if _, ok := rs.routes[signalChannel.ID()]; !ok {
		return
	}
	delete(rs.routes, signalChannel.ID())
	rs.recomputeBest()
}

// DeleteBestRoute removes the current best route, if any, and
// re-evaluates the best route from what remains.
func (rs *RouteSet) DeleteBestRoute() {
	if rs.best == nil {
		return
	}
	delete(rs.routes, rs.best.SignalChannel.ID())
	rs.recomputeBest()
}

// DeleteAll removes every route in the set.
func (rs *RouteSet) DeleteAll() {
	rs.routes = make(map[string]*Route)
	rs.best = nil
}

// RefreshBestTimestamp sets the best route's timestamp to now, if a best
// route exists. Used by Query and housekeeping to keep the view of relay
// freshness current for actively-used routes.
func (rs *RouteSet) RefreshBestTimestamp(now time.Time) {
	if rs.best == nil {
		return
	}
	rs.best.Timestamp = now
}

// recomputeBest scans routes for the new best route: the one with the
// smallest distance, tie-broken by the largest timestamp.
func (rs *RouteSet) recomputeBest() {
	var best *Route
	for _, r := range rs.routes {
		switch {
		case best == nil:
			best = r
		case r.Distance < best.Distance:
			best = r
		case r.Distance == best.Distance && r.Timestamp.After(best.Timestamp):
			best = r
		}
	}
	rs.best = best
}
