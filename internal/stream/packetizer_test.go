package stream

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"stitch/internal/event"
	"stitch/internal/types"
)

// fakeRaw is a transport-side stream fed by the test.
type fakeRaw struct {
	q      *event.Queue
	in     bytes.Buffer
	out    bytes.Buffer
	closed bool
}

func (f *fakeRaw) Read(p []byte) (int, error) {
	if f.in.Len() == 0 {
		return 0, io.EOF
	}
	return f.in.Read(p)
}

func (f *fakeRaw) Write(p []byte) (int, error) { return f.out.Write(p) }
func (f *fakeRaw) IsReady() bool               { return f.in.Len() > 0 }
func (f *fakeRaw) EventTarget() any            { return f }
func (f *fakeRaw) Close() error                { f.closed = true; return nil }

// feed appends raw bytes and posts input-ready, like a socket would.
func (f *fakeRaw) feed(b []byte) {
	f.in.Write(b)
	f.q.AddEvent(event.Event{Type: types.InputReadyEvent(), Target: f})
}

func frame(payload []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(len(payload)))
	return append(b, payload...)
}

func newTestPacketizer(t *testing.T) (*event.Queue, *fakeRaw, *Packetizer, *int) {
	t.Helper()
	q := event.NewQueue()
	raw := &fakeRaw{q: q}
	p := NewPacketizer(q, raw)

	ready := new(int)
	q.AdoptHandler(types.InputReadyEvent(), p.EventTarget(), func(event.Event) { *ready++ })
	return q, raw, p, ready
}

func TestReadWholeFrame(t *testing.T) {
	q, raw, p, ready := newTestPacketizer(t)

	raw.feed(frame([]byte("hello")))
	q.Drain()

	if *ready != 1 {
		t.Fatalf("input-ready posted %d times, want 1", *ready)
	}
	if !p.IsReady() {
		t.Fatal("IsReady false with a full frame buffered")
	}
	buf := make([]byte, 16)
	n, err := p.Read(buf)
	if err != nil || string(buf[:n]) != "hello" {
		t.Errorf("Read = %q, %v; want \"hello\"", buf[:n], err)
	}
	if p.IsReady() {
		t.Error("IsReady true after frame consumed")
	}
}

func TestPartialFrameSuppressed(t *testing.T) {
	q, raw, p, ready := newTestPacketizer(t)

	full := frame([]byte("split-delivery"))
	raw.feed(full[:3]) // not even a whole header
	q.Drain()
	if *ready != 0 {
		t.Fatal("input-ready posted for a partial header")
	}
	if _, err := p.Read(make([]byte, 8)); err != io.EOF {
		t.Errorf("Read on partial frame: got %v, want io.EOF", err)
	}

	raw.feed(full[3:7]) // header complete, payload partial
	q.Drain()
	if *ready != 0 {
		t.Fatal("input-ready posted for a partial payload")
	}

	raw.feed(full[7:])
	q.Drain()
	if *ready != 1 {
		t.Fatalf("input-ready posted %d times after completion, want 1", *ready)
	}
	buf := make([]byte, 32)
	n, _ := p.Read(buf)
	if string(buf[:n]) != "split-delivery" {
		t.Errorf("reassembled frame = %q", buf[:n])
	}
}

func TestBackToBackFrames(t *testing.T) {
	q, raw, p, _ := newTestPacketizer(t)

	raw.feed(append(frame([]byte("one")), frame([]byte("two"))...))
	q.Drain()

	buf := make([]byte, 8)
	n, _ := p.Read(buf)
	if string(buf[:n]) != "one" {
		t.Fatalf("first frame = %q", buf[:n])
	}
	if !p.IsReady() {
		t.Fatal("IsReady false with second frame buffered")
	}
	n, _ = p.Read(buf)
	if string(buf[:n]) != "two" {
		t.Errorf("second frame = %q", buf[:n])
	}
}

func TestReadStopsAtFrameBoundary(t *testing.T) {
	q, raw, p, _ := newTestPacketizer(t)

	raw.feed(append(frame([]byte("abc")), frame([]byte("xyz"))...))
	q.Drain()

	buf := make([]byte, 64)
	n, _ := p.Read(buf)
	if n != 3 {
		t.Errorf("Read crossed frame boundary: n=%d, want 3", n)
	}
}

func TestWriteFrames(t *testing.T) {
	_, raw, p, _ := newTestPacketizer(t)

	if _, err := p.Write([]byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := frame([]byte("payload"))
	if !bytes.Equal(raw.out.Bytes(), want) {
		t.Errorf("wire bytes = %v, want %v", raw.out.Bytes(), want)
	}
}

func TestEventForwarding(t *testing.T) {
	q := event.NewQueue()
	raw := &fakeRaw{q: q}
	p := NewPacketizer(q, raw)

	var connected, failed int
	var failInfo *types.ConnectionFailedInfo
	q.AdoptHandler(types.ConnectedEvent(), p.EventTarget(), func(event.Event) { connected++ })
	q.AdoptHandler(types.ConnectionFailedEvent(), p.EventTarget(), func(ev event.Event) {
		failed++
		failInfo = ev.Data.(*types.ConnectionFailedInfo)
	})

	q.AddEvent(event.Event{Type: types.ConnectedEvent(), Target: raw})
	q.AddEvent(event.Event{
		Type:   types.ConnectionFailedEvent(),
		Target: raw,
		Data:   &types.ConnectionFailedInfo{What: "refused"},
	})
	q.Drain()

	if connected != 1 || failed != 1 {
		t.Errorf("forwarded connected=%d failed=%d, want 1 and 1", connected, failed)
	}
	if failInfo == nil || failInfo.What != "refused" {
		t.Errorf("failure payload not forwarded: %+v", failInfo)
	}
}

func TestCloseDetaches(t *testing.T) {
	q, raw, p, ready := newTestPacketizer(t)

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !raw.closed {
		t.Error("Close did not close the inner stream")
	}
	raw.feed(frame([]byte("late")))
	q.Drain()
	if *ready != 0 {
		t.Error("events delivered after Close")
	}
	if _, err := p.Write([]byte("x")); err != ErrStreamClosed {
		t.Errorf("Write after Close: got %v, want ErrStreamClosed", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
