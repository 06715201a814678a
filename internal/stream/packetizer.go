// Package stream provides the packetizing layer of the connection stack:
// length-prefix framing over a raw byte stream, so readers consume whole
// messages.
package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"stitch/internal/event"
	"stitch/internal/types"
)

// ErrStreamClosed is returned for operations on a closed packetizer.
var ErrStreamClosed = errors.New("stream closed")

// MaxFrameSize bounds the payload Write accepts for a single frame. Incoming
// length prefixes are not checked against it.
const MaxFrameSize = 4 * 1024 * 1024

// Packetizer frames messages with a big-endian u32 length prefix. Each Write
// becomes one frame; Read serves bytes of the current frame only, and only
// once the frame is completely buffered. Events from the inner stream are
// re-posted against the packetizer's own target; input-ready is suppressed
// until a whole frame is readable.
//
// The packetizer owns the inner stream and closes it on Close. All methods
// run on the event-queue goroutine; there is no internal locking.
type Packetizer struct {
	q     *event.Queue
	inner types.Stream

	buf        bytes.Buffer
	size       uint32
	sizeParsed bool
	closed     bool
}

// NewPacketizer wraps inner, taking ownership of it, and subscribes to its
// events.
func NewPacketizer(q *event.Queue, inner types.Stream) *Packetizer {
	p := &Packetizer{q: q, inner: inner}
	t := inner.EventTarget()
	q.AdoptHandler(types.InputReadyEvent(), t, p.handleInputReady)
	q.AdoptHandler(types.ConnectedEvent(), t, p.forward)
	q.AdoptHandler(types.ConnectionFailedEvent(), t, p.forward)
	q.AdoptHandler(types.DisconnectedEvent(), t, p.forward)
	q.AdoptHandler(types.OutputErrorEvent(), t, p.forward)
	q.AdoptHandler(types.InputShutdownEvent(), t, p.handleInputShutdown)
	q.AdoptHandler(types.OutputShutdownEvent(), t, p.forward)
	return p
}

// EventTarget returns the identity the packetizer posts its events against.
func (p *Packetizer) EventTarget() any { return p }

// IsReady reports whether a complete frame is buffered.
func (p *Packetizer) IsReady() bool {
	return !p.closed && p.frameReady()
}

// Read copies bytes of the current frame into b. It returns 0 and io.EOF
// when no complete frame is buffered, so codecs using io.ReadFull fail fast
// on truncated messages.
func (p *Packetizer) Read(b []byte) (int, error) {
	if p.closed {
		return 0, ErrStreamClosed
	}
	if !p.frameReady() {
		return 0, io.EOF
	}
	n := len(b)
	if uint32(n) > p.size {
		n = int(p.size)
	}
	n, _ = p.buf.Read(b[:n])
	p.size -= uint32(n)
	if p.size == 0 {
		p.sizeParsed = false
	}
	return n, nil
}

// Write sends b as a single frame.
func (p *Packetizer) Write(b []byte) (int, error) {
	if p.closed {
		return 0, ErrStreamClosed
	}
	if len(b) > MaxFrameSize {
		return 0, errors.New("frame too large")
	}
	frame := make([]byte, 0, 4+len(b))
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(b)))
	frame = append(frame, b...)
	if _, err := p.inner.Write(frame); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Close detaches from the inner stream's events and closes it. Idempotent.
func (p *Packetizer) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	t := p.inner.EventTarget()
	p.q.RemoveHandler(types.InputReadyEvent(), t)
	p.q.RemoveHandler(types.ConnectedEvent(), t)
	p.q.RemoveHandler(types.ConnectionFailedEvent(), t)
	p.q.RemoveHandler(types.DisconnectedEvent(), t)
	p.q.RemoveHandler(types.OutputErrorEvent(), t)
	p.q.RemoveHandler(types.InputShutdownEvent(), t)
	p.q.RemoveHandler(types.OutputShutdownEvent(), t)
	return p.inner.Close()
}

// frameReady parses the pending length prefix if needed and reports whether
// the whole frame is buffered.
func (p *Packetizer) frameReady() bool {
	if !p.sizeParsed {
		if p.buf.Len() < 4 {
			return false
		}
		var hdr [4]byte
		p.buf.Read(hdr[:])
		p.size = binary.BigEndian.Uint32(hdr[:])
		p.sizeParsed = true
	}
	return uint32(p.buf.Len()) >= p.size
}

func (p *Packetizer) handleInputReady(event.Event) {
	if p.closed {
		return
	}
	p.pull()
	if p.frameReady() {
		p.q.AddEvent(event.Event{Type: types.InputReadyEvent(), Target: p})
	}
}

func (p *Packetizer) handleInputShutdown(ev event.Event) {
	// drain whatever the inner layer still buffers before passing the
	// shutdown along
	p.pull()
	p.forward(ev)
}

func (p *Packetizer) forward(ev event.Event) {
	if p.closed {
		return
	}
	ev.Target = p
	p.q.AddEvent(ev)
}

func (p *Packetizer) pull() {
	chunk := make([]byte, 4096)
	for {
		n, err := p.inner.Read(chunk)
		if n > 0 {
			p.buf.Write(chunk[:n])
		}
		if n == 0 || err != nil {
			return
		}
	}
}
