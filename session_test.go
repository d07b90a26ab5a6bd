// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"testing"

	"github.com/nexuswm/compositor/transport"
)

func TestSessionsOpenAndGet(t *testing.T) {
	a, _ := transport.Pipe()
	s := NewSessions()
	sess := s.Open(a)
	if sess.Key != a.ID() {
		t.Fatalf("expected session key %q, got %q", a.ID(), sess.Key)
	}
	got, ok := s.Get(a.ID())
	if !ok || got != sess {
		t.Fatal("Get should return the just-opened session")
	}
	if s.Count() != 1 {
		t.Fatalf("expected 1 live session, got %d", s.Count())
	}
}

func TestSessionOwnership(t *testing.T) {
	a, _ := transport.Pipe()
	s := NewSessions()
	sess := s.Open(a)
	sess.Own(1)
	sess.Own(2)
	if !sess.Owns(1) || !sess.Owns(2) {
		t.Fatal("expected both windows owned")
	}
	sess.Disown(1)
	if sess.Owns(1) {
		t.Fatal("expected window 1 disowned")
	}
	owned := sess.OwnedWindows()
	if len(owned) != 1 || owned[0] != 2 {
		t.Fatalf("expected only window 2 remaining, got %v", owned)
	}
}

func TestSessionsCloseReturnsOwnedWindows(t *testing.T) {
	a, _ := transport.Pipe()
	s := NewSessions()
	sess := s.Open(a)
	sess.Own(10)
	sess.Own(20)

	wids := s.Close(a.ID())
	if len(wids) != 2 {
		t.Fatalf("expected 2 owned wids returned, got %d", len(wids))
	}
	if _, ok := s.Get(a.ID()); ok {
		t.Fatal("session should no longer be retrievable after Close")
	}
	if s.Count() != 0 {
		t.Fatalf("expected 0 live sessions, got %d", s.Count())
	}
}

func TestSessionsCloseUnknownKeyIsNoop(t *testing.T) {
	s := NewSessions()
	if wids := s.Close("nonexistent"); wids != nil {
		t.Fatalf("closing an unknown key should return nil, got %v", wids)
	}
}

func TestSessionsAll(t *testing.T) {
	a, _ := transport.Pipe()
	b, _ := transport.Pipe()
	s := NewSessions()
	s.Open(a)
	s.Open(b)
	all := s.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 sessions from All, got %d", len(all))
	}
}
