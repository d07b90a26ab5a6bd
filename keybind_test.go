// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import "testing"

func TestKeyBindTableBindAndLookup(t *testing.T) {
	tab := NewKeyBindTable()
	tab.Bind(ModSuper, 'x', "clientA", ResponseSteal)
	owner, resp, ok := tab.Lookup(ModSuper, 'x')
	if !ok || owner != "clientA" || resp != ResponseSteal {
		t.Fatalf("unexpected lookup result owner=%q resp=%v ok=%v", owner, resp, ok)
	}
	if _, _, ok := tab.Lookup(ModSuper, 'y'); ok {
		t.Fatal("expected no binding for an unbound chord")
	}
}

func TestKeyBindTableLastWriterWins(t *testing.T) {
	tab := NewKeyBindTable()
	tab.Bind(ModAlt, 'a', "clientA", ResponseNotify)
	tab.Bind(ModAlt, 'a', "clientB", ResponseSteal)
	owner, resp, ok := tab.Lookup(ModAlt, 'a')
	if !ok || owner != "clientB" || resp != ResponseSteal {
		t.Fatalf("expected the later bind to win, got owner=%q resp=%v", owner, resp)
	}
}

func TestKeyBindTableUnbindOnlyOwner(t *testing.T) {
	tab := NewKeyBindTable()
	tab.Bind(ModAlt, 'a', "clientA", ResponseNotify)
	tab.Unbind(ModAlt, 'a', "clientB") // not the owner; should be a no-op.
	if _, _, ok := tab.Lookup(ModAlt, 'a'); !ok {
		t.Fatal("a non-owner Unbind should not remove the binding")
	}
	tab.Unbind(ModAlt, 'a', "clientA")
	if _, _, ok := tab.Lookup(ModAlt, 'a'); ok {
		t.Fatal("the owner's Unbind should remove the binding")
	}
}

func TestKeyBindTableUnbindClient(t *testing.T) {
	tab := NewKeyBindTable()
	tab.Bind(ModAlt, 'a', "clientA", ResponseNotify)
	tab.Bind(ModSuper, 'b', "clientA", ResponseSteal)
	tab.Bind(ModCtrl, 'c', "clientB", ResponseNotify)

	tab.UnbindClient("clientA")
	if _, _, ok := tab.Lookup(ModAlt, 'a'); ok {
		t.Fatal("expected clientA's first binding removed")
	}
	if _, _, ok := tab.Lookup(ModSuper, 'b'); ok {
		t.Fatal("expected clientA's second binding removed")
	}
	if _, _, ok := tab.Lookup(ModCtrl, 'c'); !ok {
		t.Fatal("expected clientB's binding left untouched")
	}
}
