// Copyright © 2024 Nexus Window Systems
// Use is governed by a BSD-style license found in the LICENSE file.

package compositor

import (
	"encoding/binary"
	"errors"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nexuswm/compositor/protocol"
	"github.com/nexuswm/compositor/transport"
)

// Devices names the optional raw input sources the event loop also
// multiplexes alongside the listener and client sessions (§2: "the
// client-socket listener, the pointer device, the keyboard device, and
// (optionally) an absolute-pointer device"). A nil field means that
// source is absent (e.g. a nested instance that takes all of its input
// relayed through its parent-compositor window instead).
//
// The wire format of a real /dev/input-style device is a kernel/hardware
// concern the distilled spec leaves unstated; this implementation reads
// fixed-size little-endian packets, documented in DESIGN.md, rather than
// inventing evdev parsing the spec never asked for.
type Devices struct {
	Pointer  *os.File // 12 bytes/packet: int32 dx, int32 dy, uint32 buttons.
	Keyboard *os.File // 12 bytes/packet: uint32 keycode, uint32 state, uint32 modifiers.
}

// Run is the compositor's top-level event loop: it multiplexes the
// listener fd and every connected session's fd with unix.Poll, mirroring
// the teacher's own Action() fixed-step loop structure but event-driven
// rather than busy-polling, with a ~16ms ceiling on how long a poll wait
// can run before the next frame is due (§4.1/SPEC_FULL.md's frame pacing
// section). It is the only place in this package that touches the wall
// clock; everything it calls takes an explicit nowMs/timestamp instead.
func Run(c *Compositor, ln transport.Listener, devices Devices) error {
	lastFrame := time.Now()
	for {
		timeout := frameIntervalMs - int(time.Since(lastFrame).Milliseconds())
		if timeout < 0 {
			timeout = 0
		}

		fds, kind, indexed := buildPollSet(c, ln, devices)
		n, err := unix.Poll(fds, timeout)
		if err != nil && !errors.Is(err, unix.EINTR) {
			return err
		}
		if n > 0 {
			for i, pfd := range fds {
				if pfd.Revents == 0 {
					continue
				}
				switch kind[i] {
				case pollListener:
					acceptPending(c, ln)
				case pollPointer:
					servicePointer(c, devices.Pointer)
				case pollKeyboard:
					serviceKeyboard(c, devices.Keyboard)
				case pollSession:
					serviceSession(c, indexed[i])
				}
			}
		}

		if time.Since(lastFrame).Milliseconds() >= frameIntervalMs {
			lastFrame = time.Now()
			now := time.Now()
			nowMs := now.UnixMilli()
			c.RenderFrame(nowMs, toTimestamp(now))
			if c.ShouldExit() {
				broadcastSessionEnd(c)
				return nil
			}
		}
	}
}

const frameIntervalMs = 16

// pollSource classifies one entry of the poll set built by buildPollSet.
type pollSource int

const (
	pollListener pollSource = iota
	pollPointer
	pollKeyboard
	pollSession
)

// buildPollSet assembles the unix.Poll fd array: the listener and (if
// present) the pointer/keyboard device files come first, followed by one
// entry per session that reports a real fd (an in-memory test transport
// reports none and is simply never polled here -- tests drive
// HandleMessage directly instead).
func buildPollSet(c *Compositor, ln transport.Listener, devices Devices) ([]unix.PollFd, []pollSource, map[int]*Session) {
	var fds []unix.PollFd
	var kind []pollSource

	fd, ok := ln.Fd()
	if !ok {
		fd = -1
	}
	fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	kind = append(kind, pollListener)

	if devices.Pointer != nil {
		fds = append(fds, unix.PollFd{Fd: int32(devices.Pointer.Fd()), Events: unix.POLLIN})
		kind = append(kind, pollPointer)
	}
	if devices.Keyboard != nil {
		fds = append(fds, unix.PollFd{Fd: int32(devices.Keyboard.Fd()), Events: unix.POLLIN})
		kind = append(kind, pollKeyboard)
	}

	indexed := make(map[int]*Session)
	for _, sess := range c.Sessions.All() {
		fd, ok := sess.Conn.Fd()
		if !ok {
			continue
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		kind = append(kind, pollSession)
		indexed[len(fds)-1] = sess
	}
	return fds, kind, indexed
}

// servicePointer reads one fixed-size relative-motion packet from the
// pointer device and feeds it through the dispatcher.
func servicePointer(c *Compositor, dev *os.File) {
	var pkt [12]byte
	if _, err := io.ReadFull(dev, pkt[:]); err != nil {
		log.Printf("compositor: read pointer device: %v", err)
		return
	}
	dx := int32(binary.LittleEndian.Uint32(pkt[0:4]))
	dy := int32(binary.LittleEndian.Uint32(pkt[4:8]))
	buttons := binary.LittleEndian.Uint32(pkt[8:12])
	for _, out := range c.HandlePointerMotion(int(dx), int(dy)) {
		deliver(c, out)
	}
	applyButtonEdges(c, buttons)
}

// applyButtonEdges diffs the device's absolute button mask against the
// dispatcher's last-known mask and synthesizes the corresponding
// ButtonDown/ButtonUp edges.
func applyButtonEdges(c *Compositor, buttons uint32) {
	prev := c.Dispatcher.buttons
	nowMs := time.Now().UnixMilli()
	for _, b := range []uint32{ButtonLeft, ButtonRight, ButtonMiddle} {
		switch {
		case buttons&b != 0 && prev&b == 0:
			for _, out := range c.HandlePointerButton(b, true, 0, nowMs) {
				deliver(c, out)
			}
		case buttons&b == 0 && prev&b != 0:
			for _, out := range c.HandlePointerButton(b, false, 0, nowMs) {
				deliver(c, out)
			}
		}
	}
}

// serviceKeyboard reads one fixed-size key-edge packet from the keyboard
// device and feeds it through the keyboard router.
func serviceKeyboard(c *Compositor, dev *os.File) {
	var pkt [12]byte
	if _, err := io.ReadFull(dev, pkt[:]); err != nil {
		log.Printf("compositor: read keyboard device: %v", err)
		return
	}
	keycode := binary.LittleEndian.Uint32(pkt[0:4])
	state := binary.LittleEndian.Uint32(pkt[4:8])
	modifiers := binary.LittleEndian.Uint32(pkt[8:12])
	res := c.HandleKeyInput(keycode, state, modifiers, time.Now().UnixMilli())
	for _, out := range res.Outbound {
		deliver(c, out)
	}
}

// acceptPending accepts the one connection poll reported as pending,
// opening a session and sending WELCOME for it. Accept blocks, so it is
// called once per readiness report; further pending connections are
// picked up on later poll rounds.
func acceptPending(c *Compositor, ln transport.Listener) {
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	sess := c.Sessions.Open(conn)
	c.noteMidClient()
	if err := conn.Send(&protocol.WelcomeMsg{
		DisplayW: int32(c.Reg.DisplayWidth), DisplayH: int32(c.Reg.DisplayHeight),
	}); err != nil {
		log.Printf("compositor: welcome %s: %v", sess.Key, err)
	}
}

// serviceSession reads and dispatches one message from sess's
// connection, closing and tearing it down on EOF or a protocol
// error, per §4.6's disconnect handling.
func serviceSession(c *Compositor, sess *Session) {
	msg, err := sess.Conn.Recv()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Printf("compositor: recv %s: %v", sess.Key, err)
		}
		sess.Conn.Close()
		c.Disconnect(sess.Key, time.Now().UnixMilli())
		return
	}
	for _, out := range c.HandleMessage(sess, msg, time.Now().UnixMilli()) {
		deliver(c, out)
	}
}

// deliver sends one outbound message to the session it's addressed to,
// if that session is still connected.
func deliver(c *Compositor, out Outbound) {
	target, ok := c.Sessions.Get(out.SessionKey)
	if !ok {
		return
	}
	if err := target.Conn.Send(out.Message); err != nil {
		log.Printf("compositor: send %s: %v", out.SessionKey, err)
	}
}

// broadcastSessionEnd sends SESSION_END to every connected client before
// Run returns, per §7's last-client-disconnect shutdown path.
func broadcastSessionEnd(c *Compositor) {
	for _, sess := range c.Sessions.All() {
		_ = sess.Conn.Send(&protocol.SessionEndMsg{})
	}
}

// toTimestamp breaks a time.Time into the plain calendar fields
// screenshot.go's ScreenshotPath wants, keeping the wall-clock touch
// isolated to this one conversion site.
func toTimestamp(t time.Time) timestamp {
	return timestamp{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
	}
}
