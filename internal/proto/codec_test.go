package proto

import (
	"bytes"
	"errors"
	"testing"
)

func TestHelloRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHello(&buf, 1, 6); err != nil {
		t.Fatalf("WriteHello: %v", err)
	}
	major, minor, err := ReadHello(&buf)
	if err != nil {
		t.Fatalf("ReadHello: %v", err)
	}
	if major != 1 || minor != 6 {
		t.Errorf("got version %d.%d, want 1.6", major, minor)
	}
}

func TestHelloBackRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHelloBack(&buf, 1, 6, "laptop"); err != nil {
		t.Fatalf("WriteHelloBack: %v", err)
	}
	major, minor, name, err := ReadHelloBack(&buf)
	if err != nil {
		t.Fatalf("ReadHelloBack: %v", err)
	}
	if major != 1 || minor != 6 || name != "laptop" {
		t.Errorf("got %d.%d %q, want 1.6 \"laptop\"", major, minor, name)
	}
}

func TestReadHelloBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("Bogus!\x00\x01\x00\x06")
	if _, _, err := ReadHello(buf); !errors.Is(err, ErrProtocol) {
		t.Errorf("bad magic: got %v, want ErrProtocol", err)
	}
}

func TestReadHelloTruncated(t *testing.T) {
	buf := bytes.NewBuffer(Magic[:3])
	if _, _, err := ReadHello(buf); !errors.Is(err, ErrProtocol) {
		t.Errorf("truncated hello: got %v, want ErrProtocol", err)
	}
}

func TestHelloBackNameTooLong(t *testing.T) {
	long := make([]byte, MaxNameLength+1)
	var buf bytes.Buffer
	if err := WriteHelloBack(&buf, 1, 6, string(long)); err == nil {
		t.Error("expected error for oversized name")
	}
}

func TestReadHelloBackOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Magic)
	buf.Write([]byte{0, 1, 0, 6})
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff}) // absurd name length
	if _, _, _, err := ReadHelloBack(&buf); !errors.Is(err, ErrProtocol) {
		t.Errorf("oversized length: got %v, want ErrProtocol", err)
	}
}
