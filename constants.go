// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import "time"

// Tunable constants governing aging, distance, drift, failure escalation
// and housekeeping. These mirror the production defaults. Config lets an
// individual Book override DefaultBanTime and DefaultMaxAddresses at
// construction time; every other constant here applies to all Books.
const (
	// MaxAgeWS is the maximum time a websocket-style address may go
	// unseen before it is considered aged out.
	MaxAgeWS = 30 * time.Minute

	// MaxAgeRTC is the maximum time a WebRTC address may go unseen
	// before it is considered aged out.
	MaxAgeRTC = 10 * time.Minute

	// MaxAgeDumb is the maximum time a dumb client address may go unseen
	// before it is considered aged out.
	MaxAgeDumb = 1 * time.Minute

	// MaxDistance is the maximum number of relay hops a route, or a
	// stored RTC address, may carry.
	MaxDistance uint8 = 4

	// MaxTimestampDrift is the maximum amount an incoming address's
	// timestamp may lie in the future before it is rejected outright.
	MaxTimestampDrift = 10 * time.Minute

	// MaxFailedAttemptsWS is the number of consecutive connection
	// failures a websocket-style peer tolerates before escalating to a
	// ban.
	MaxFailedAttemptsWS uint32 = 3

	// MaxFailedAttemptsRTC is the number of consecutive connection
	// failures a WebRTC peer tolerates before escalating to a ban.
	MaxFailedAttemptsRTC uint32 = 2

	// HousekeepingInterval is the period between housekeeping sweeps.
	HousekeepingInterval = 1 * time.Minute

	// DefaultBanTime is the ban duration used when none is specified.
	DefaultBanTime = 10 * time.Minute

	// InitialFailedBackoff is the ban duration applied the first time a
	// peer's failures escalate to a ban.
	InitialFailedBackoff = 15 * time.Second

	// MaxFailedBackoff is the ceiling the doubling ban backoff saturates
	// at; once reached, further escalation removes the peer instead of
	// banning it again.
	MaxFailedBackoff = 10 * time.Minute

	// DefaultMaxAddresses is the default limit on the number of
	// addresses Book.Query returns.
	DefaultMaxAddresses = 1000

	// RecentAttemptWindow is how recently a connection attempt must have
	// started for Score to apply its recency penalty - a peer that was
	// just tried is a poor dial candidate even if it has never actually
	// failed.
	RecentAttemptWindow = 10 * time.Minute
)
