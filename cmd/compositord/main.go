// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	compositor "github.com/nexuswm/compositor"
	"github.com/nexuswm/compositor/backend"
	"github.com/nexuswm/compositor/config"
	"github.com/nexuswm/compositor/shm"
	"github.com/nexuswm/compositor/transport"
)

func main() {
	var (
		nested     bool
		geometry   string
		configPath string
	)

	root := &cobra.Command{
		Use:   "compositord",
		Short: "Canvas window compositor and manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(nested, geometry, configPath)
		},
	}
	root.Flags().BoolVarP(&nested, "nested", "n", false, "run inside a parent compositor instance instead of owning the framebuffer")
	root.Flags().StringVarP(&geometry, "geometry", "g", "", "nested window geometry WxH (ignored by the framebuffer backend, which uses the device's mode)")
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to an optional YAML config file")

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run(nested bool, geometry, configPath string) error {
	fileCfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	attrs := fileCfg.Apply()
	if nested {
		attrs = append(attrs, config.Nested())
	}
	if geometry != "" {
		w, h, err := parseGeometry(geometry)
		if err != nil {
			return err
		}
		attrs = append(attrs, config.Geometry(w, h))
	}
	cfg := config.New(attrs...)

	// §6: a non-nested instance refuses to start if DISPLAY is already
	// set, since that means a parent compositor is already running and
	// this process would collide with it for the framebuffer.
	if !cfg.Nested && os.Getenv("DISPLAY") != "" {
		return fmt.Errorf("compositord: DISPLAY already set; pass --nested to run under a parent compositor")
	}

	id := compositor.DefaultIdentity
	if cfg.Nested {
		id = compositor.NestedIdentity(os.Getpid())
	} else if cfg.Identity != "" {
		id = compositor.Identity(cfg.Identity)
	}
	if err := id.Publish(); err != nil {
		return fmt.Errorf("compositord: publish identity: %w", err)
	}

	var back backend.Backend
	if cfg.Nested {
		back, err = backend.DialNested(cfg.SocketPath+".parent", cfg.Width, cfg.Height)
	} else {
		back, err = backend.OpenFramebuffer(cfg.DevicePath)
	}
	if err != nil {
		return fmt.Errorf("compositord: open display backend: %w", err)
	}
	defer back.Close()

	alloc := shm.New()
	comp := compositor.NewCompositor(id, alloc, back)

	ln, err := transport.Listen(cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("compositord: listen: %w", err)
	}
	defer ln.Close()

	for _, kb := range fileCfg.KeyBindings {
		response := compositor.ResponseNotify
		if strings.EqualFold(kb.Response, "steal") {
			response = compositor.ResponseSteal
		}
		comp.Binds.Bind(kb.Modifiers, kb.Keycode, string(id), response)
	}

	log.Printf("compositord: identity=%s socket=%s geometry=%dx%d nested=%v",
		id, cfg.SocketPath, cfg.Width, cfg.Height, cfg.Nested)

	return compositor.Run(comp, ln, compositor.Devices{})
}

func parseGeometry(s string) (int, int, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("compositord: invalid geometry %q, want WxH", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("compositord: invalid geometry %q: %w", s, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("compositord: invalid geometry %q: %w", s, err)
	}
	return w, h, nil
}
