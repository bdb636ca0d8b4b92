// Copyright (c) 2025 The peerbook developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

// AddressStore is the book's primary bookkeeping: a map from identity key
// to peer record, a secondary map from RTC peer ID to identity key, and
// the running count of records currently in StateConnecting. It performs
// no eviction of its own - eviction is entirely driven by Book, which
// decides when a record's removal is warranted.
type AddressStore struct {
	primary         map[string]*PeerRecord
	byPeerID        map[string]string
	connectingCount uint32
}

// NewAddressStore returns an empty AddressStore.
func NewAddressStore() *AddressStore {
	return &AddressStore{
		primary:  make(map[string]*PeerRecord),
		byPeerID: make(map[string]string),
	}
}

// Get returns the record for identityKey, or nil if none is known.
func (s *AddressStore) Get(identityKey string) *PeerRecord {
	return s.primary[identityKey]
}

// Insert adds or replaces the record for rec.Address.IdentityKey.
func (s *AddressStore) Insert(rec *PeerRecord) {
	s.primary[rec.Address.IdentityKey] = rec
}

// Remove deletes the record for identityKey, if any.
func (s *AddressStore) Remove(identityKey string) {
	delete(s.primary, identityKey)
}

// PutPeerID indexes identityKey under peerID, so that the record can
// later be found by its RTC signalling identity.
func (s *AddressStore) PutPeerID(peerID, identityKey string) {
	s.byPeerID[peerID] = identityKey
}

// RemovePeerID removes the peerID -> identityKey index entry, if any.
func (s *AddressStore) RemovePeerID(peerID string) {
	delete(s.byPeerID, peerID)
}

// ByPeerID looks up a record by its RTC signalling peer ID.
func (s *AddressStore) ByPeerID(peerID string) *PeerRecord {
	key, ok := s.byPeerID[peerID]
	if !ok {
		return nil
	}
	return s.primary[key]
}

// Values returns every record currently known to the store. Iteration
// order is Go's unspecified map order, matching the store-iteration-order
// contract the book's Query documents.
func (s *AddressStore) Values() []*PeerRecord {
	out := make([]*PeerRecord, 0, len(s.primary))
	for _, rec := range s.primary {
		out = append(out, rec)
	}
	return out
}

// Len returns the number of records currently known to the store.
func (s *AddressStore) Len() int {
	return len(s.primary)
}

// ConnectingCount returns the number of records currently in
// StateConnecting.
func (s *AddressStore) ConnectingCount() uint32 {
	return s.connectingCount
}

// incConnecting increments the connecting counter. Called on any
// transition into StateConnecting.
func (s *AddressStore) incConnecting() {
	s.connectingCount++
}

// decConnecting decrements the connecting counter. Called on any
// transition out of StateConnecting, including removal via Book.remove;
// AddressStore.Remove itself does not call it.
func (s *AddressStore) decConnecting() {
	if s.connectingCount > 0 {
		s.connectingCount--
	}
}
