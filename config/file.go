// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk, YAML-encoded subset of Config a user can
// persist across runs, plus a set of global key bindings the compositor
// should pre-register on startup (before any client ever calls KEY_BIND),
// mirroring the teacher's shader-config yaml.v3 usage in load/shd.go.
type FileConfig struct {
	Identity   string `yaml:"identity"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	SocketPath string `yaml:"socket_path"`
	DevicePath string `yaml:"device_path"`

	KeyBindings []FileKeyBinding `yaml:"key_bindings"`
}

// FileKeyBinding is one entry of the on-disk key-binding table: a
// modifier/keycode pair and a response mode, "notify" or "steal" per §3's
// key-binding table contract. compositord registers every entry with the
// server's own identity string as owner. That string is never a client
// session key, so the bound KEY_EVENTs reach no client; a "steal" entry
// still keeps the key from the focused window.
type FileKeyBinding struct {
	Modifiers uint32 `yaml:"modifiers"`
	Keycode   uint32 `yaml:"keycode"`
	Response  string `yaml:"response"` // "notify" or "steal".
}

// LoadFile reads and parses a YAML config file. A missing file is not an
// error -- callers get back a zero-value FileConfig and should fall back
// to Defaults, matching the optional-file note in SPEC_FULL.md.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, nil
		}
		return fc, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("config: yaml %s: %w", path, err)
	}
	return fc, nil
}

// Apply turns a parsed FileConfig into Attrs, so a file and CLI flags
// compose through the same Attr pipeline rather than two separate
// override mechanisms.
func (fc FileConfig) Apply() []Attr {
	var attrs []Attr
	if fc.Identity != "" {
		attrs = append(attrs, Identity(fc.Identity))
	}
	if fc.Width > 0 || fc.Height > 0 {
		w, h := fc.Width, fc.Height
		if w == 0 {
			w = Defaults.Width
		}
		if h == 0 {
			h = Defaults.Height
		}
		attrs = append(attrs, Geometry(w, h))
	}
	if fc.SocketPath != "" {
		attrs = append(attrs, SocketPath(fc.SocketPath))
	}
	if fc.DevicePath != "" {
		attrs = append(attrs, DevicePath(fc.DevicePath))
	}
	return attrs
}
