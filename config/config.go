// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

// Package config holds the compositor's startup configuration, built with
// the same functional-options Attr pattern the teacher uses in its own
// config.go (see http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis),
// plus an on-disk YAML file for settings a user wants to persist across
// runs (the key-binding table, display geometry).
package config

// Config holds every tunable the compositord CLI and its optional on-disk
// file can set before the compositor starts.
type Config struct {
	Identity   string // server identity, defaults to "compositor".
	Nested     bool
	Width      int
	Height     int
	SocketPath string
	DevicePath string // linear framebuffer device, default "/dev/fb0".

	BackgroundR, BackgroundG, BackgroundB float32
}

// Defaults mirrors the teacher's configDefaults: a Config usable even if
// no Attr is applied.
var Defaults = Config{
	Identity:    "compositor",
	Nested:      false,
	Width:       1024,
	Height:      768,
	SocketPath:  "/tmp/compositor.sock",
	DevicePath:  "/dev/fb0",
	BackgroundR: 0,
	BackgroundG: 0,
	BackgroundB: 0.1,
}

// Attr is an optional configuration override, applied in order over a
// base Config (usually Defaults).
type Attr func(*Config)

// New builds a Config starting from Defaults and applying attrs in order.
func New(attrs ...Attr) Config {
	cfg := Defaults
	for _, a := range attrs {
		a(&cfg)
	}
	return cfg
}

// Identity overrides the server identity string.
func Identity(id string) Attr {
	return func(c *Config) {
		if id != "" {
			c.Identity = id
		}
	}
}

// Nested marks the compositor as running inside a parent compositor
// instance rather than owning the framebuffer directly.
func Nested() Attr {
	return func(c *Config) { c.Nested = true }
}

// Geometry sets the display width and height in pixels. Values outside a
// sane range are ignored, mirroring the teacher's Size attribute clamping
// rather than rejecting the whole config.
func Geometry(w, h int) Attr {
	return func(c *Config) {
		if w > 0 && w < 16_384 {
			c.Width = w
		}
		if h > 0 && h < 16_384 {
			c.Height = h
		}
	}
}

// SocketPath overrides the Unix domain socket path clients connect to.
func SocketPath(path string) Attr {
	return func(c *Config) {
		if path != "" {
			c.SocketPath = path
		}
	}
}

// DevicePath overrides the linear framebuffer device path.
func DevicePath(path string) Attr {
	return func(c *Config) {
		if path != "" {
			c.DevicePath = path
		}
	}
}

// Background sets the display's clear color.
func Background(r, g, b float32) Attr {
	return func(c *Config) { c.BackgroundR, c.BackgroundG, c.BackgroundB = r, g, b }
}
