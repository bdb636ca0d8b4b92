// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"time"

	"github.com/decred/dcrd/crypto/rand"
)

// Book is the public façade of the address book: the single entry point
// the network layer uses to report addresses it has learned, report
// connection outcomes, and query for dial candidates. It owns the
// AddressStore and is the only thing that ever mutates a PeerRecord.
//
// Every public method here runs to completion without suspending; there
// is no internal locking because nothing needs one (spec §5). Embedding
// this in a goroutine-per-connection design is the caller's job - Book
// itself assumes single-threaded, cooperative access.
type Book struct {
	cfg          Config
	store        *AddressStore
	emitter      Emitter
	diversityKey [32]byte
}

// New constructs a Book for localAddress and injects seeds as an initial,
// unconditional batch (equivalent to Add(nil, seeds...), which is exempt
// from the age gate so that seeds with a zero Timestamp are accepted).
func New(cfg Config, seeds []PeerAddress) *Book {
	cfg = cfg.withDefaults()
	b := &Book{
		cfg:   cfg,
		store: NewAddressStore(),
	}
	rand.Read(b.diversityKey[:])
	if len(seeds) > 0 {
		b.Add(nil, seeds...)
	}
	return b
}

// Subscribe registers fn to be called synchronously whenever Book admits
// one or more addresses, via Add or via housekeeping unbanning a record.
func (b *Book) Subscribe(fn AddedFunc) {
	b.emitter.Subscribe(fn)
}

// Store returns the book's underlying AddressStore. Exposed for callers
// that need direct, read-only introspection (metrics, debug endpoints);
// all mutation must continue to go through Book's own methods so that the
// state machine and counters stay consistent.
func (b *Book) Store() *AddressStore {
	return b.store
}

func (b *Book) now() time.Time {
	return b.cfg.Clock.Now()
}

func (b *Book) isOnline() bool {
	if b.cfg.IsOnline == nil {
		return true
	}
	return b.cfg.IsOnline()
}

// Add admits addrs learned over channel, or over no channel at all (nil,
// meaning a seed/bootstrap injection exempt from the age gate). Each
// address is evaluated independently; after the whole batch has been
// applied to the store, a single "added" event fires carrying every
// address that was actually admitted. The returned slice is that same set
// - its length is the number of addresses that were *not* rejected.
func (b *Book) Add(channel Channel, addrs ...PeerAddress) []PeerAddress {
	now := b.now()
	admitted := make([]PeerAddress, 0, len(addrs))
	for _, addr := range addrs {
		if b.addOne(channel, addr, now) {
			admitted = append(admitted, addr.Clone())
		}
	}
	b.emitter.fire(admitted, b)
	return admitted
}

// addOne evaluates and, if accepted, applies a single address. See spec
// §4.4 for the six rejection rules implemented here in order.
func (b *Book) addOne(channel Channel, addr PeerAddress, now time.Time) bool {
	if addr.Protocol != ProtocolWS && addr.Protocol != ProtocolRTC && addr.Protocol != ProtocolDumb {
		log.Debugf("%v", makeError(ErrUnknownProtocol, "rejecting address with unrecognized protocol"))
		return false
	}

	// 1. Self-exclusion.
	if addr.Equal(b.cfg.LocalAddress) {
		return false
	}

	// 2. Age gate - exempt for seed/bootstrap injection (channel == nil).
	if channel != nil && addr.ExceedsAge(now) {
		return false
	}

	// 3. Timestamp drift gate.
	if addr.Timestamp.After(now.Add(MaxTimestampDrift)) {
		return false
	}

	existing := b.store.Get(addr.IdentityKey)

	// 4. RTC distance cap. The wire form carries the sender's distance;
	// we store the next-hop distance, one greater. Exceeding the cap
	// both rejects the address and severs the now-suspect route over
	// channel on any record we already have for this peer, to break
	// routing loops.
	incomingDistance := addr.Distance
	if addr.Protocol == ProtocolRTC {
		incomingDistance++
		if incomingDistance > MaxDistance {
			if existing != nil && existing.Routes != nil && channel != nil {
				existing.Routes.DeleteRoute(channel)
			}
			return false
		}
	}

	if existing != nil {
		// 5. Banned addresses are rejected outright; seeds are
		// immutable after bootstrap regardless of their state.
		if existing.State == StateBanned || existing.IsSeed() {
			return false
		}

		// 6. WS monotone freshness: only a strictly newer timestamp
		// is accepted. RTC uses distance instead of time for this.
		if addr.Protocol == ProtocolWS && !addr.Timestamp.After(existing.Address.Timestamp) {
			return false
		}
	}

	var rec *PeerRecord
	if existing == nil {
		rec = NewPeerRecord(addr)
		b.store.Insert(rec)
	} else {
		rec = existing
		updated := addr
		if updated.NetAddress == nil {
			// Never erase a known net address with an update that
			// simply lacks one.
			updated.NetAddress = rec.Address.NetAddress
		}
		rec.Address = updated
	}

	if addr.Protocol == ProtocolRTC {
		rec.Address.Distance = incomingDistance
		if rec.Routes == nil {
			rec.Routes = NewRouteSet()
		}
		if channel != nil {
			rec.Routes.AddRoute(channel, incomingDistance, addr.Timestamp)
		}
		if addr.PeerID != nil {
			b.store.PutPeerID(*addr.PeerID, addr.IdentityKey)
		}
	}

	return true
}

// applyTransition runs event through the reducer for rec and, if legal,
// keeps AddressStore's connecting counter consistent with the resulting
// state change.
func (b *Book) applyTransition(rec *PeerRecord, event Event) bool {
	newState, ok := reduce(rec.State, event)
	if !ok {
		return false
	}
	wasConnecting := rec.State == StateConnecting
	rec.State = newState
	isConnecting := rec.State == StateConnecting
	if wasConnecting && !isConnecting {
		b.store.decConnecting()
	} else if !wasConnecting && isConnecting {
		b.store.incConnecting()
	}
	return true
}

// Connecting reports that a connection attempt to addr has begun.
func (b *Book) Connecting(addr PeerAddress) bool {
	rec := b.store.Get(addr.IdentityKey)
	if rec == nil {
		return false
	}
	if !b.applyTransition(rec, EventConnecting{}) {
		return false
	}
	attemptedAt := b.now()
	rec.LastAttempt = &attemptedAt
	return true
}

// Connected reports that a connection to addr, over channel, is now
// established. If addr is entirely unknown, a fresh record is created for
// it first. Returns false (and leaves the peer untouched) if the record
// is Banned - the caller must refuse the connection in that case, with
// the one observable exception that IsBanned never reports true for
// seeds, so a caller that only consults IsBanned before dialing may still
// end up calling Connected on a banned seed; it is rejected here exactly
// as any other banned peer would be, and recovers only through
// housekeeping's ban-expiry sweep.
func (b *Book) Connected(channel Channel, addr PeerAddress) bool {
	now := b.now()
	rec := b.store.Get(addr.IdentityKey)
	if rec == nil {
		rec = NewPeerRecord(addr)
		b.store.Insert(rec)
		if addr.Protocol == ProtocolRTC && addr.PeerID != nil {
			b.store.PutPeerID(*addr.PeerID, addr.IdentityKey)
		}
	}
	if !b.applyTransition(rec, EventConnected{Channel: channel}) {
		return false
	}

	connectedAt := now
	rec.LastConnected = &connectedAt
	rec.FailedAttempts = 0
	rec.BanBackoff = InitialFailedBackoff
	rec.Address = addr

	if addr.Protocol == ProtocolRTC {
		if rec.Routes == nil {
			rec.Routes = NewRouteSet()
		}
		if channel != nil {
			rec.Routes.AddRoute(channel, addr.Distance, now)
		}
	}
	return true
}

// purgeRoutesForChannel removes, across the entire store, every RTC route
// that used channel as its signal. Any record that loses its last route
// as a result is removed. Once Disconnected has found a record for its
// addr, this runs before the transition is applied, since one signal
// channel may relay for many RTC peers, not only the one the caller is
// reporting about. For an unknown addr, Disconnected returns before
// purging anything.
func (b *Book) purgeRoutesForChannel(channel Channel) {
	if channel == nil {
		return
	}
	for _, rec := range b.store.Values() {
		if rec.Routes == nil || !rec.Routes.HasRoute() {
			continue
		}
		rec.Routes.DeleteRoute(channel)
		if !rec.Routes.HasRoute() {
			b.remove(rec.Address.IdentityKey)
		}
	}
}

// Disconnected reports that the connection to addr over channel has
// ended.
func (b *Book) Disconnected(channel Channel, addr PeerAddress) bool {
	rec := b.store.Get(addr.IdentityKey)
	if rec == nil {
		return false
	}

	b.purgeRoutesForChannel(channel)

	rec = b.store.Get(addr.IdentityKey)
	if rec == nil {
		return false
	}
	if !b.applyTransition(rec, EventDisconnected{Channel: channel}) {
		return false
	}

	remoteClose := channel != nil && channel.ClosedByRemote() && b.isOnline()
	if remoteClose || rec.Address.Protocol == ProtocolDumb {
		b.remove(addr.IdentityKey)
	}
	return true
}

// Failure reports that a connection attempt to addr failed.
func (b *Book) Failure(addr PeerAddress) bool {
	rec := b.store.Get(addr.IdentityKey)
	if rec == nil {
		return false
	}
	if !b.applyTransition(rec, EventFailure{}) {
		return false
	}

	rec.FailedAttempts++
	if rec.FailedAttempts >= rec.MaxFailedAttempts {
		if rec.BanBackoff >= MaxFailedBackoff {
			b.remove(addr.IdentityKey)
		} else {
			backoff := rec.BanBackoff
			b.banRecord(rec, backoff)
			rec.BanBackoff = minDuration(MaxFailedBackoff, backoff*2)
		}
	}
	return true
}

// Unroutable reports that channel can no longer relay to addr. It is a
// no-op unless channel is addr's current best route.
func (b *Book) Unroutable(channel Channel, addr PeerAddress) bool {
	rec := b.store.Get(addr.IdentityKey)
	if rec == nil {
		return false
	}
	best := (*Route)(nil)
	if rec.Routes != nil {
		best = rec.Routes.Best()
	}
	if best == nil || channel == nil || best.SignalChannel.ID() != channel.ID() {
		log.Debugf("%v", makeError(ErrUnroutableMismatch, "unroutable report for "+addr.IdentityKey+" arrived on a non-best channel"))
		return false
	}
	if !b.applyTransition(rec, EventUnroutable{Channel: channel}) {
		return false
	}

	rec.Routes.DeleteBestRoute()
	if !rec.Routes.HasRoute() {
		b.remove(addr.IdentityKey)
	}
	return true
}

// Ban excludes addr from dialer selection and inbound acceptance for
// duration (DefaultBanTime if duration is non-positive). If addr is
// unknown, a fresh record is created for it first.
func (b *Book) Ban(addr PeerAddress, duration time.Duration) bool {
	if duration <= 0 {
		duration = b.cfg.DefaultBanTime
	}
	rec := b.store.Get(addr.IdentityKey)
	if rec == nil {
		rec = NewPeerRecord(addr)
		b.store.Insert(rec)
	}
	return b.banRecord(rec, duration)
}

// banRecord applies the Ban event to rec and its post-reducer effects:
// setting BannedUntil and dropping every route. The Ban event has no
// illegal source state, so this always succeeds.
func (b *Book) banRecord(rec *PeerRecord, duration time.Duration) bool {
	if !b.applyTransition(rec, EventBan{Duration: duration}) {
		return false
	}
	until := b.now().Add(duration)
	rec.BannedUntil = &until
	if rec.Routes != nil {
		rec.Routes.DeleteAll()
	}
	return true
}

// remove drops the record for identityKey, honoring the exceptions in
// spec §4.5: seeds are rebanned instead of deleted, and a record already
// in StateBanned is left untouched (bans persist until housekeeping reaps
// them).
func (b *Book) remove(identityKey string) {
	rec := b.store.Get(identityKey)
	if rec == nil {
		return
	}
	if rec.IsSeed() {
		b.banRecord(rec, rec.BanBackoff)
		return
	}
	if rec.State == StateBanned {
		return
	}

	if rec.Address.Protocol == ProtocolRTC && rec.Address.PeerID != nil {
		b.store.RemovePeerID(*rec.Address.PeerID)
	}
	if rec.State == StateConnecting {
		b.store.decConnecting()
	}
	b.store.Remove(identityKey)
}

// hardRemoveBanned tears down rec regardless of its StateBanned status.
// It exists solely for Housekeeper: once a directly-applied (non-escalation,
// non-seed) ban has lapsed, the record must actually disappear, which
// remove's StateBanned guard would otherwise prevent.
func (b *Book) hardRemoveBanned(rec *PeerRecord) {
	identityKey := rec.Address.IdentityKey
	if rec.Address.Protocol == ProtocolRTC && rec.Address.PeerID != nil {
		b.store.RemovePeerID(*rec.Address.PeerID)
	}
	b.store.Remove(identityKey)
}

// Lookup returns the currently stored address for identityKey, or an
// Error wrapping ErrAddressNotFound if the book holds no record for it.
func (b *Book) Lookup(identityKey string) (PeerAddress, error) {
	rec := b.store.Get(identityKey)
	if rec == nil {
		return PeerAddress{}, makeError(ErrAddressNotFound, "no address known for "+identityKey)
	}
	return rec.Address.Clone(), nil
}

// IsConnected reports whether addr is known and currently in
// StateConnected.
func (b *Book) IsConnected(addr PeerAddress) bool {
	rec := b.store.Get(addr.IdentityKey)
	return rec != nil && rec.State == StateConnected
}

// IsBanned reports whether addr is known, currently in StateBanned, and
// not a seed. Seeds never appear banned to inbound-accept logic, even
// while banned for dialer-selection purposes (spec §4.5).
func (b *Book) IsBanned(addr PeerAddress) bool {
	rec := b.store.Get(addr.IdentityKey)
	return rec != nil && rec.State == StateBanned && !rec.IsSeed()
}

// Query returns up to maxAddresses addresses (DefaultMaxAddresses, via
// Config, if maxAddresses <= 0) in the store's own iteration order,
// filtered to records that are not Banned, not Failed, not a seed, match
// protocolMask and serviceMask, and have not aged out. As a side effect,
// every Connected record it returns that has an RTC best route has that
// route's timestamp refreshed to now; records filtered out are not
// refreshed.
func (b *Book) Query(protocolMask Protocol, serviceMask ServiceFlag, maxAddresses int) []PeerAddress {
	if maxAddresses <= 0 {
		maxAddresses = b.cfg.MaxAddresses
	}
	now := b.now()
	out := make([]PeerAddress, 0, maxAddresses)
	for _, rec := range b.store.Values() {
		if len(out) >= maxAddresses {
			break
		}
		if rec.State == StateBanned || rec.State == StateFailed {
			continue
		}
		if rec.IsSeed() {
			continue
		}
		if rec.Address.Protocol&protocolMask == 0 {
			continue
		}
		if serviceMask != 0 && !rec.Address.Services.HasAny(serviceMask) {
			continue
		}
		if rec.Address.ExceedsAge(now) {
			continue
		}

		if rec.State == StateConnected && rec.Routes != nil && rec.Routes.HasRoute() {
			rec.Routes.RefreshBestTimestamp(now)
		}

		out = append(out, rec.Address.Clone())
	}
	return out
}

// RankedQuery applies Query's filters to every record, orders all the
// matches with Rank, and returns the first maxAddresses of them. When more
// records match than maxAddresses, the result can therefore hold different
// addresses from Query's, which keeps the first matches in store order.
// Every matching Connected record with an RTC best route has that route's
// timestamp refreshed, including matches cut by the limit. It is the
// entry point a dialer is expected to use; Query itself is kept
// order-transparent for tests and introspection.
func (b *Book) RankedQuery(protocolMask Protocol, serviceMask ServiceFlag, maxAddresses int) []PeerAddress {
	if maxAddresses <= 0 {
		maxAddresses = b.cfg.MaxAddresses
	}
	now := b.now()
	var candidates []*PeerRecord
	for _, rec := range b.store.Values() {
		if rec.State == StateBanned || rec.State == StateFailed || rec.IsSeed() {
			continue
		}
		if rec.Address.Protocol&protocolMask == 0 {
			continue
		}
		if serviceMask != 0 && !rec.Address.Services.HasAny(serviceMask) {
			continue
		}
		if rec.Address.ExceedsAge(now) {
			continue
		}
		if rec.State == StateConnected && rec.Routes != nil && rec.Routes.HasRoute() {
			rec.Routes.RefreshBestTimestamp(now)
		}
		candidates = append(candidates, rec)
	}
	ranked := Rank(candidates, now, b.diversityKey)
	if len(ranked) > maxAddresses {
		ranked = ranked[:maxAddresses]
	}
	return ranked
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
