// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

// DefaultSeeds is the embedded list of bootstrap peers for callers to pass
// to New, which injects its seeds argument via Add(nil, ...). New does not
// fall back to this list: a nil seeds argument injects nothing. Every
// entry has a zero Timestamp, marking it as a seed: exempt from aging,
// never physically removed, and hidden from Query. This is a compile-time
// list, not a file or wire format (spec §6); production code is free to
// supply its own list to New instead.
var DefaultSeeds = []PeerAddress{
	{Protocol: ProtocolWS, IdentityKey: "seed1.example.net:7777", Services: ServiceFlag(1)},
	{Protocol: ProtocolWS, IdentityKey: "seed2.example.net:7777", Services: ServiceFlag(1)},
	{Protocol: ProtocolWS, IdentityKey: "seed3.example.net:7777", Services: ServiceFlag(1)},
}
