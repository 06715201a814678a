// Package clipboard holds the clipboard snapshot object exchanged between the
// local screen and the server.
package clipboard

import (
	"encoding/binary"
	"fmt"
)

// ID selects one of the tracked clipboard channels.
type ID uint8

const (
	// IDClipboard is the common copy/paste clipboard.
	IDClipboard ID = iota
	// IDSelection is the primary selection on systems that have one.
	IDSelection

	// End bounds the closed set of clipboard ids.
	End
)

// Time is the screen's timestamp for a clipboard grab. Zero means never
// observed.
type Time uint32

// Format identifies the encoding of one clipboard payload.
type Format uint32

const (
	FormatText Format = iota
	FormatHTML
	FormatBitmap

	formatEnd
)

// Clipboard is a snapshot of one clipboard channel: a grab timestamp plus
// per-format payloads. The screen fills it, the client marshals it for the
// server proxy.
type Clipboard struct {
	open  bool
	time  Time
	added bool
	data  [formatEnd][]byte
	has   [formatEnd]bool
}

// Open begins filling the snapshot at time t. It mirrors the screen-side
// open/close pairing: a screen may use the passed time to detect an unchanged
// clipboard and skip copying data. Returns false if already open.
func (c *Clipboard) Open(t Time) bool {
	if c.open {
		return false
	}
	c.open = true
	c.time = t
	return true
}

// Close ends an Open. The snapshot keeps its contents.
func (c *Clipboard) Close() {
	c.open = false
}

// Empty discards all payloads, keeping the time set at Open.
func (c *Clipboard) Empty() {
	c.data = [formatEnd][]byte{}
	c.has = [formatEnd]bool{}
	c.added = false
}

// Add stores data for format f, replacing any previous payload.
func (c *Clipboard) Add(f Format, data []byte) {
	c.data[f] = data
	c.has[f] = true
	c.added = true
}

// Has reports whether format f carries a payload.
func (c *Clipboard) Has(f Format) bool { return c.has[f] }

// Get returns the payload for format f, nil when absent.
func (c *Clipboard) Get(f Format) []byte { return c.data[f] }

// Time returns the grab timestamp last set by Open or SetTime.
func (c *Clipboard) Time() Time { return c.time }

// SetTime overrides the grab timestamp. Screens use it when filling a
// snapshot outside an Open/Close pair.
func (c *Clipboard) SetTime(t Time) { c.time = t }

// Marshal encodes the snapshot: u32 format count, then per present format a
// u32 format id, u32 length and the payload, all big-endian.
func (c *Clipboard) Marshal() []byte {
	var count uint32
	for f := Format(0); f < formatEnd; f++ {
		if c.has[f] {
			count++
		}
	}
	buf := make([]byte, 4, 64)
	binary.BigEndian.PutUint32(buf, count)
	for f := Format(0); f < formatEnd; f++ {
		if !c.has[f] {
			continue
		}
		var hdr [8]byte
		binary.BigEndian.PutUint32(hdr[0:], uint32(f))
		binary.BigEndian.PutUint32(hdr[4:], uint32(len(c.data[f])))
		buf = append(buf, hdr[:]...)
		buf = append(buf, c.data[f]...)
	}
	return buf
}

// Unmarshal replaces the snapshot's payloads with the marshalled form in b.
// The time is not part of the wire form and is left untouched.
func (c *Clipboard) Unmarshal(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("clipboard data truncated: %d bytes", len(b))
	}
	count := binary.BigEndian.Uint32(b)
	b = b[4:]
	c.Empty()
	for i := uint32(0); i < count; i++ {
		if len(b) < 8 {
			return fmt.Errorf("clipboard format %d header truncated", i)
		}
		f := Format(binary.BigEndian.Uint32(b))
		n := binary.BigEndian.Uint32(b[4:])
		b = b[8:]
		if uint32(len(b)) < n {
			return fmt.Errorf("clipboard format %d payload truncated", i)
		}
		if f < formatEnd {
			c.Add(f, append([]byte(nil), b[:n]...))
		}
		b = b[n:]
	}
	return nil
}
