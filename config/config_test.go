// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewAppliesDefaults(t *testing.T) {
	c := New()
	if c != Defaults {
		t.Fatalf("New() with no attrs should equal Defaults, got %+v", c)
	}
}

func TestGeometryIgnoresOutOfRange(t *testing.T) {
	c := New(Geometry(-5, 100000))
	if c.Width != Defaults.Width {
		t.Fatalf("expected out-of-range width rejected, got %d", c.Width)
	}
	if c.Height != Defaults.Height {
		t.Fatalf("expected out-of-range height rejected, got %d", c.Height)
	}
	c2 := New(Geometry(640, 480))
	if c2.Width != 640 || c2.Height != 480 {
		t.Fatalf("expected valid geometry applied, got %dx%d", c2.Width, c2.Height)
	}
}

func TestNestedAttr(t *testing.T) {
	c := New(Nested(), Identity("compositor-nest-1234"))
	if !c.Nested {
		t.Fatal("expected Nested true")
	}
	if c.Identity != "compositor-nest-1234" {
		t.Fatalf("unexpected identity %q", c.Identity)
	}
}

func TestLoadFileMissingIsNotError(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if fc.Identity != "" {
		t.Fatalf("expected zero-value FileConfig, got %+v", fc)
	}
}

func TestLoadFileParsesKeyBindings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compositor.yaml")
	contents := `
identity: compositor
width: 1920
height: 1080
key_bindings:
  - modifiers: 5
    keycode: 97
    response: steal
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if fc.Width != 1920 || fc.Height != 1080 {
		t.Fatalf("unexpected geometry %+v", fc)
	}
	if len(fc.KeyBindings) != 1 || fc.KeyBindings[0].Response != "steal" {
		t.Fatalf("unexpected bindings %+v", fc.KeyBindings)
	}
	attrs := fc.Apply()
	cfg := New(attrs...)
	if cfg.Width != 1920 || cfg.Identity != "compositor" {
		t.Fatalf("Apply did not compose into Config, got %+v", cfg)
	}
}
