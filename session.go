// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import "github.com/nexuswm/compositor/transport"

// Session is one connected client, keyed by its transport endpoint
// identity (§4.6). It holds the set of windows this client owns.
type Session struct {
	Key  string // transport.Conn.ID().
	Conn transport.Conn

	windows map[Wid]bool
}

// Sessions tracks every connected client by transport identity.
type Sessions struct {
	byKey map[string]*Session
}

// NewSessions returns an empty session table.
func NewSessions() *Sessions {
	return &Sessions{byKey: make(map[string]*Session)}
}

// Open creates a session for a newly accepted connection, replying
// WELCOME is the caller's responsibility (§4.6: "On HELLO, the server
// creates an empty window set and replies WELCOME").
func (s *Sessions) Open(conn transport.Conn) *Session {
	sess := &Session{Key: conn.ID(), Conn: conn, windows: make(map[Wid]bool)}
	s.byKey[sess.Key] = sess
	return sess
}

// Get looks up a session by its key.
func (s *Sessions) Get(key string) (*Session, bool) {
	sess, ok := s.byKey[key]
	return sess, ok
}

// Own records that a session owns a window.
func (s *Session) Own(id Wid) { s.windows[id] = true }

// Disown removes a window from a session's owned set, e.g. once it has
// been reaped.
func (s *Session) Disown(id Wid) { delete(s.windows, id) }

// Owns reports whether this session owns the given window.
func (s *Session) Owns(id Wid) bool { return s.windows[id] }

// OwnedWindows returns every wid this session currently owns.
func (s *Session) OwnedWindows() []Wid {
	out := make([]Wid, 0, len(s.windows))
	for id := range s.windows {
		out = append(out, id)
	}
	return out
}

// Close removes a session on disconnect and returns the wids it owned,
// so the caller can start each one's closing animation (§4.6: "every
// window in the set is marked-for-close"). The session is no longer
// retrievable via Get after this call.
func (s *Sessions) Close(key string) []Wid {
	sess, ok := s.byKey[key]
	if !ok {
		return nil
	}
	delete(s.byKey, key)
	return sess.OwnedWindows()
}

// Count returns the number of live sessions. Compositor.ShouldExit does
// not use it; it checks the remaining windows' bands instead.
func (s *Sessions) Count() int { return len(s.byKey) }

// All returns every live session, in no particular order, for the event
// loop's poll-set bookkeeping.
func (s *Sessions) All() []*Session {
	out := make([]*Session, 0, len(s.byKey))
	for _, sess := range s.byKey {
		out = append(out, sess)
	}
	return out
}
