// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import "sync"

// AddedFunc is a callback invoked synchronously whenever the book admits
// one or more addresses, either through Add or through housekeeping
// unbanning a record. Subscribers must not call back into the Book with
// the same batch; the book does not guard against or re-check
// re-entrant mutation.
type AddedFunc func(addrs []PeerAddress, book *Book)

// Emitter is a small synchronous subscription registry. It exists to keep
// the "added" notification a pluggable concern of Book rather than a
// hard-coded channel or logger call, mirroring how the teacher's address
// manager leaves notification to its caller instead of baking in a
// particular transport.
type Emitter struct {
	mtx       sync.Mutex
	subs      []AddedFunc
	firing    bool
}

// Subscribe registers fn to be called on every "added" emission.
func (e *Emitter) Subscribe(fn AddedFunc) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.subs = append(e.subs, fn)
}

// fire invokes every subscriber with addrs, in registration order. It
// panics if called re-entrantly (a subscriber calling back into fire
// while the previous fire is still running), since the book's contract
// requires emission to happen strictly after a completed mutation, never
// interleaved with another one.
func (e *Emitter) fire(addrs []PeerAddress, book *Book) {
	if len(addrs) == 0 {
		return
	}
	e.mtx.Lock()
	if e.firing {
		e.mtx.Unlock()
		panic("addrmgr: re-entrant added emission")
	}
	e.firing = true
	subs := e.subs
	e.mtx.Unlock()

	defer func() {
		e.mtx.Lock()
		e.firing = false
		e.mtx.Unlock()
	}()

	for _, fn := range subs {
		fn(addrs, book)
	}
}
