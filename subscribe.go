// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"github.com/nexuswm/compositor/protocol"
	"github.com/nexuswm/compositor/transport"
)

// Subscribers is the set of client endpoints to notify whenever the
// window population or any advertised metadata changes (§3, §4.6).
type Subscribers struct {
	byKey map[string]transport.Conn
}

// NewSubscribers returns an empty subscriber set.
func NewSubscribers() *Subscribers {
	return &Subscribers{byKey: make(map[string]transport.Conn)}
}

// Add registers conn as a subscriber.
func (s *Subscribers) Add(conn transport.Conn) { s.byKey[conn.ID()] = conn }

// Remove unregisters a subscriber by key (e.g. on explicit UNSUBSCRIBE).
func (s *Subscribers) Remove(key string) { delete(s.byKey, key) }

// NotifyAll sends an empty-body NOTIFY to every subscriber whose session
// is still live, per sessions. Entries whose endpoint no longer has a
// live session are pruned here (lazy pruning per §4.6); Compositor's
// Disconnect also removes a disconnecting client's entry directly.
func (s *Subscribers) NotifyAll(sessions *Sessions) {
	for key, conn := range s.byKey {
		if _, ok := sessions.Get(key); !ok {
			delete(s.byKey, key)
			continue
		}
		_ = conn.Send(&protocol.NotifyMsg{})
	}
}

// Count returns the number of currently registered subscribers, without
// pruning (test/inspection helper).
func (s *Subscribers) Count() int { return len(s.byKey) }
