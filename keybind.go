// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

// KeyResponse is how a bound chord is delivered: Notify still routes the
// event to the focused window afterward; Steal suppresses normal routing
// entirely (§3, §4.4 Keyboard routing).
type KeyResponse int

const (
	ResponseNotify KeyResponse = iota
	ResponseSteal
)

// keyBindKey is the (modifier_mask, keycode) pair a binding is keyed by.
type keyBindKey struct {
	Modifiers uint32
	Keycode   uint32
}

// keyBinding is one entry of the table: an owning client and a response
// mode.
type keyBinding struct {
	Owner    string
	Response KeyResponse
}

// KeyBindTable maps (modifier_mask, keycode) to (owner client, response)
// per §3.
type KeyBindTable struct {
	bindings map[keyBindKey]keyBinding
}

// NewKeyBindTable returns an empty table.
func NewKeyBindTable() *KeyBindTable {
	return &KeyBindTable{bindings: make(map[keyBindKey]keyBinding)}
}

// Bind registers owner's interest in a chord. A later KEY_BIND for the
// same chord replaces the owner and response, matching "last writer
// wins" -- the spec does not describe conflict resolution for two
// clients binding the same chord, so the simplest deterministic rule was
// chosen rather than silently layering bindings.
func (t *KeyBindTable) Bind(modifiers, keycode uint32, owner string, response KeyResponse) {
	t.bindings[keyBindKey{modifiers, keycode}] = keyBinding{Owner: owner, Response: response}
}

// Unbind removes any binding owned by owner for the given chord.
func (t *KeyBindTable) Unbind(modifiers, keycode uint32, owner string) {
	k := keyBindKey{modifiers, keycode}
	if b, ok := t.bindings[k]; ok && b.Owner == owner {
		delete(t.bindings, k)
	}
}

// Lookup returns the binding for a chord, if any.
func (t *KeyBindTable) Lookup(modifiers, keycode uint32) (owner string, response KeyResponse, ok bool) {
	b, ok := t.bindings[keyBindKey{modifiers, keycode}]
	if !ok {
		return "", 0, false
	}
	return b.Owner, b.Response, true
}

// UnbindClient removes every binding owned by owner, e.g. on disconnect.
func (t *KeyBindTable) UnbindClient(owner string) {
	for k, b := range t.bindings {
		if b.Owner == owner {
			delete(t.bindings, k)
		}
	}
}
