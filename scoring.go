// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"encoding/binary"
	"math"
	"sort"
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/crypto/rand"
)

// Score returns a record's selection priority as a pure function of its
// counters: how recently it was last attempted, how often it has failed,
// and, for a WebRTC peer, how far away its best route currently is. It is
// grounded directly on the teacher's KnownAddress.chance(): a connection
// attempt still in its recent-attempt window is heavily deprioritized
// exactly as chance() deprioritizes an address attempted within the last
// ten minutes, repeated failures deprioritize geometrically, and the
// minimum returned is never zero so that a peer which has never been
// tried is not permanently starved.
//
// Score never consults BannedUntil; callers are expected to have already
// excluded banned and failed records the way Book.Query does, the same
// division of labor the teacher has between isBad() (exclusion) and
// chance() (ranking).
func Score(rec *PeerRecord, now time.Time) float64 {
	const minScore = 0.01

	score := 1.0
	if rec.LastAttempt != nil {
		since := now.Sub(*rec.LastAttempt)
		if since < RecentAttemptWindow {
			score *= 0.01
		}
	}
	score *= math.Pow(1.5, -float64(rec.FailedAttempts))
	if rec.LastConnected == nil {
		// Never proven good - rank behind peers with a track record,
		// the same bias AddressCache applies by skipping addresses
		// that never succeeded, softened here to a discount instead
		// of an exclusion since Query's filtering already excludes
		// the genuinely bad ones.
		score *= 0.5
	}
	if rec.Address.Protocol == ProtocolRTC && rec.Routes != nil && rec.Routes.HasRoute() {
		dist := float64(rec.Routes.Best().Distance)
		score /= dist + 1
	}

	return math.Max(score, minScore)
}

// diversityHash derives a per-process-stable but non-obvious ordering
// value for an identity key, the same role getNewBucket/getTriedBucket
// play in the teacher: spreading selection across peers instead of
// falling back to whatever order a map happened to produce.
func diversityHash(key [32]byte, identityKey string) uint64 {
	data := make([]byte, 0, len(key)+len(identityKey))
	data = append(data, key[:]...)
	data = append(data, identityKey...)
	sum := chainhash.HashB(data)
	return binary.LittleEndian.Uint64(sum)
}

// Rank orders records by descending Score, with diversityHash as the
// sort's tie-break, then shuffles each run of records with exactly equal
// Score, so the final order within such a run is random rather than the
// diversityHash order. The Fisher-Yates pass - ported from AddressCache
// onto the teacher's own CSPRNG instead of math/rand - is what gives the
// dialer candidate-selection variety run over run, rather than a fixed
// order a misbehaving peer could learn to game.
//
// Rank works on records, not on the addresses Book.Query returns;
// Book.RankedQuery is the caller that applies it to Query's filters.
// Query itself always returns addresses in the store's own iteration
// order, unchanged.
func Rank(records []*PeerRecord, now time.Time, diversityKey [32]byte) []PeerAddress {
	type scored struct {
		addr PeerAddress
		rank float64
		div  uint64
	}

	items := make([]scored, 0, len(records))
	for _, rec := range records {
		items = append(items, scored{
			addr: rec.Address.Clone(),
			rank: Score(rec, now),
			div:  diversityHash(diversityKey, rec.Address.IdentityKey),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].rank != items[j].rank {
			return items[i].rank > items[j].rank
		}
		return items[i].div < items[j].div
	})

	// Fisher-Yates shuffle within each run of exactly-equal rank, so
	// that candidates a dialer sees first are not deterministically
	// biased toward whichever identity key happens to hash lower.
	start := 0
	for start < len(items) {
		end := start + 1
		for end < len(items) && items[end].rank == items[start].rank {
			end++
		}
		n := end - start
		if n > 1 {
			rand.Shuffle(n, func(i, j int) {
				items[start+i], items[start+j] = items[start+j], items[start+i]
			})
		}
		start = end
	}

	out := make([]PeerAddress, len(items))
	for i, it := range items {
		out[i] = it.addr
	}
	return out
}
