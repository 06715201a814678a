package proto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrProtocol reports a malformed or truncated handshake frame.
var ErrProtocol = errors.New("protocol error")

// ReadHello decodes the server's hello: magic, then major and minor version
// as big-endian u16. The frame must already be buffered; a short read is a
// protocol error.
func ReadHello(r io.Reader) (major, minor uint16, err error) {
	buf := make([]byte, len(Magic)+4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, 0, fmt.Errorf("%w: short hello: %v", ErrProtocol, err)
	}
	if !bytes.Equal(buf[:len(Magic)], Magic) {
		return 0, 0, fmt.Errorf("%w: bad magic %q", ErrProtocol, buf[:len(Magic)])
	}
	major = binary.BigEndian.Uint16(buf[len(Magic):])
	minor = binary.BigEndian.Uint16(buf[len(Magic)+2:])
	return major, minor, nil
}

// WriteHello encodes a server hello. Used by the server side and by tests.
func WriteHello(w io.Writer, major, minor uint16) error {
	buf := make([]byte, 0, len(Magic)+4)
	buf = append(buf, Magic...)
	buf = binary.BigEndian.AppendUint16(buf, major)
	buf = binary.BigEndian.AppendUint16(buf, minor)
	_, err := w.Write(buf)
	return err
}

// WriteHelloBack encodes the client's reply: magic, the client's own version
// pair, then the u32-length-prefixed UTF-8 name. The whole reply is issued
// as a single write so the packetizer frames it as one message.
func WriteHelloBack(w io.Writer, major, minor uint16, name string) error {
	if len(name) > MaxNameLength {
		return fmt.Errorf("client name too long: %d bytes", len(name))
	}
	buf := make([]byte, 0, len(Magic)+8+len(name))
	buf = append(buf, Magic...)
	buf = binary.BigEndian.AppendUint16(buf, major)
	buf = binary.BigEndian.AppendUint16(buf, minor)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(name)))
	buf = append(buf, name...)
	_, err := w.Write(buf)
	return err
}

// ReadHelloBack decodes a client reply. Used by the server side and by tests.
func ReadHelloBack(r io.Reader) (major, minor uint16, name string, err error) {
	major, minor, err = ReadHello(r)
	if err != nil {
		return 0, 0, "", err
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, 0, "", fmt.Errorf("%w: short name length: %v", ErrProtocol, err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxNameLength {
		return 0, 0, "", fmt.Errorf("%w: name length %d exceeds limit", ErrProtocol, n)
	}
	nameBuf := make([]byte, n)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return 0, 0, "", fmt.Errorf("%w: short name: %v", ErrProtocol, err)
	}
	return major, minor, string(nameBuf), nil
}
