// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import "github.com/google/uuid"

// Channel is the book's abstract view of a transport connection. The book
// never dials, reads from, or closes a Channel - it only compares
// instances for identity and observes whether the remote end closed it.
// Concrete transports (websocket, WebRTC data channel, ...) supply their
// own implementation.
type Channel interface {
	// ID uniquely identifies this channel instance. Two Channel values
	// represent the same underlying connection iff their IDs are equal.
	ID() string

	// ClosedByRemote reports whether the remote end initiated the
	// close, as opposed to the local side tearing the channel down
	// itself.
	ClosedByRemote() bool
}

// SimpleChannel is a minimal Channel implementation for callers that have
// no existing identity scheme of their own. Its ID is generated once, at
// construction, using the same identifier scheme relayed messages use
// elsewhere in this stack.
type SimpleChannel struct {
	id             string
	closedByRemote bool
}

// NewSimpleChannel returns a SimpleChannel with a freshly generated ID.
func NewSimpleChannel() *SimpleChannel {
	return &SimpleChannel{id: uuid.New().String()}
}

// ID implements Channel.
func (c *SimpleChannel) ID() string {
	return c.id
}

// ClosedByRemote implements Channel.
func (c *SimpleChannel) ClosedByRemote() bool {
	return c.closedByRemote
}

// SetClosedByRemote records that the remote end closed this channel. Test
// and transport code call this once the underlying connection observes a
// remote close.
func (c *SimpleChannel) SetClosedByRemote(closed bool) {
	c.closedByRemote = closed
}
