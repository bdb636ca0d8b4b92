// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Config carries the construction-time parameters for a Book. It follows
// the teacher's pattern of a small config struct plus package-level
// default constants, rather than a CLI flag or environment-variable
// layer - the book has neither (spec §6).
type Config struct {
	// LocalAddress is this node's own address. Add rejects any address
	// equal to it.
	LocalAddress PeerAddress

	// MaxAddresses bounds the number of addresses Query returns by
	// default when called with maxAddresses <= 0. Defaults to
	// DefaultMaxAddresses.
	MaxAddresses int

	// DefaultBanTime is the ban duration used when Ban is called with a
	// non-positive duration. Defaults to DefaultBanTime (the package
	// constant).
	DefaultBanTime time.Duration

	// IsOnline reports whether the local platform currently believes it
	// has network connectivity. Consulted by Disconnected. A nil value
	// is treated as always online.
	IsOnline func() bool

	// Clock is the time source used for aging, drift, ban expiry and
	// housekeeping. A nil value uses the real wall clock. Tests inject
	// clock.NewMock() for deterministic control over "now".
	Clock clock.Clock
}

func (c Config) withDefaults() Config {
	if c.MaxAddresses <= 0 {
		c.MaxAddresses = DefaultMaxAddresses
	}
	if c.DefaultBanTime <= 0 {
		c.DefaultBanTime = DefaultBanTime
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	return c
}
