// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Housekeeper runs the book's periodic sweep (spec §4.7): aging out stale
// New/Tried/Failed records, and lifting expired bans. It is grounded on
// the teacher's addressHandler goroutine plus ticker pattern in
// addrmanager.go, generalized from a single fixed sweep function to the
// book's own state machine and constants.
type Housekeeper struct {
	book  *Book
	clock clock.Clock

	wg       sync.WaitGroup
	quit     chan struct{}
	quitOnce sync.Once
}

// NewHousekeeper returns a Housekeeper that sweeps book on the clock
// supplied by book's own Config.
func NewHousekeeper(book *Book) *Housekeeper {
	return &Housekeeper{
		book:  book,
		clock: book.cfg.Clock,
		quit:  make(chan struct{}),
	}
}

// Start launches the housekeeping loop in a background goroutine, ticking
// every HousekeepingInterval until Stop is called.
func (h *Housekeeper) Start() {
	h.wg.Add(1)
	go h.run()
}

func (h *Housekeeper) run() {
	defer h.wg.Done()
	ticker := h.clock.Ticker(HousekeepingInterval)
	defer ticker.Stop()
	for {
		select {
		case t := <-ticker.C:
			h.Tick(t)
		case <-h.quit:
			return
		}
	}
}

// Stop halts the housekeeping loop and blocks until it has exited.
func (h *Housekeeper) Stop() {
	h.quitOnce.Do(func() {
		close(h.quit)
	})
	h.wg.Wait()
}

// Tick runs one housekeeping sweep as of now. It is the deterministic,
// directly testable core of the housekeeping loop: Start's ticker exists
// only to call this repeatedly with the real clock's current time.
//
// The sweep visits every record currently known to the store once and,
// depending on its state, applies one of the rules below:
//
//  1. Ban expiry: any StateBanned record whose BannedUntil has passed is
//     lifted. A record that was banned because of failure escalation (it
//     still carries failure-escalation bookkeeping, signaled here by
//     FailedAttempts being at or above its MaxFailedAttempts) or that is a
//     seed is reset to StateNew with its failure counters cleared, so it
//     re-enters ordinary circulation. Any other lifted ban - i.e. one
//     applied directly via Book.Ban rather than through failure escalation
//     - is instead removed outright, since nothing refers to it as a
//     candidate worth keeping around once its ban lapses.
//  2. Age expiry: any non-seed New, Tried or Failed record whose address
//     has exceeded its protocol's max age is removed; seeds are skipped.
//     Connecting, Connected and Banned records are never aged out by this
//     rule - Connecting and Connected because they are in active use,
//     Banned because rule 1 owns their lifecycle.
//
// A Connected record with an RTC route has its best route's timestamp
// refreshed, the same "still alive" bookkeeping Book.Query performs for a
// route a caller is actively handed - the periodic sweep extends that same
// courtesy to connections nobody happens to be querying for right now.
//
// Every record unbanned by rule 1 is collected into a single batch and
// reported to subscribers with one emitter.fire call after the whole sweep
// completes, not one call per record - matching the same batched-admission
// guarantee Book.Add provides.
func (h *Housekeeper) Tick(now time.Time) {
	var unbanned []PeerAddress
	for _, rec := range h.book.store.Values() {
		switch rec.State {
		case StateBanned:
			if addr, ok := h.sweepBanned(rec, now); ok {
				unbanned = append(unbanned, addr)
			}
		case StateNew, StateTried, StateFailed:
			h.sweepAged(rec, now)
		case StateConnected:
			if rec.Routes != nil && rec.Routes.HasRoute() {
				rec.Routes.RefreshBestTimestamp(now)
			}
		}
	}
	if len(unbanned) > 0 {
		h.book.emitter.fire(unbanned, h.book)
	}
}

// sweepBanned lifts rec's ban if it has expired, returning the address it
// was lifted for so Tick can batch it into a single added event. ok is
// false both when the ban has not yet expired and when the record was
// hard-removed instead of unbanned.
func (h *Housekeeper) sweepBanned(rec *PeerRecord, now time.Time) (PeerAddress, bool) {
	if rec.BannedUntil == nil || now.Before(*rec.BannedUntil) {
		return PeerAddress{}, false
	}

	wasEscalation := rec.FailedAttempts >= rec.MaxFailedAttempts
	if wasEscalation || rec.IsSeed() {
		rec.State = StateNew
		rec.FailedAttempts = 0
		rec.BannedUntil = nil
		if rec.IsSeed() {
			// A seed is never removed, so its backoff cannot be left to
			// climb toward MaxFailedBackoff without bound - every unban
			// restarts it at the initial value.
			rec.BanBackoff = InitialFailedBackoff
		}
		// A non-seed escalation ban keeps its BanBackoff as-is: it
		// already doubled going into this ban, and Failure doubles it
		// again on the next escalation, until it saturates at
		// MaxFailedBackoff and the peer is removed instead of rebanned.
		return rec.Address.Clone(), true
	}

	// A ban applied directly via Book.Ban, not through failure
	// escalation: once it lapses there is nothing worth keeping, so the
	// record is hard-deleted. Book.remove deliberately leaves any
	// StateBanned record untouched (so an in-progress ban can never be
	// undone by an unrelated remove call), so that path cannot be reused
	// here - the record must be torn down directly instead.
	h.book.hardRemoveBanned(rec)
	return PeerAddress{}, false
}

func (h *Housekeeper) sweepAged(rec *PeerRecord, now time.Time) {
	if rec.IsSeed() {
		return
	}
	if !rec.Address.ExceedsAge(now) {
		return
	}
	h.book.remove(rec.Address.IdentityKey)
}
