// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package addrmgr implements the peer address book for a peer-to-peer node.

# Address Book Overview

A node that talks to heterogeneous transports - direct websocket-style
servers, browser-relayed WebRTC peers reached through one or more signal
channels, and dumb outbound-only clients - needs a single place that
remembers who it has heard about, what state each of them is in, and
whether it is currently safe to dial or accept a connection from them.
That is this package.

The book tracks, per peer, a small state machine (New, Connecting,
Connected, Tried, Failed, Banned) driven by the caller's own connection
attempts, an aging and ban/backoff policy enforced by periodic
housekeeping, and - for WebRTC peers reachable only through a relay - a
set of candidate routes ranked by hop distance and freshness.

The book does not open connections, does not speak any wire protocol, and
does not persist its state across restarts. It is advisory bookkeeping:
callers report what happened (a dial succeeded, a peer disconnected, a
relay became unroutable) and the book updates its view accordingly. A
malformed or out-of-sequence report from a misbehaving transport is
ignored - it returns false rather than an error, and only an unrecognized
protocol or an unroutable report on a non-best channel is logged, at
debug level - and the only method that can fail is Lookup, for a plain
not-found.
*/
package addrmgr
