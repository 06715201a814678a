// Package types defines the collaborator contracts the client composes: the
// local screen, the transport and stream layers, the cipher layer and the
// server proxy. Implementations live with the platform and network code;
// only the contracts and their event types are fixed here.
package types

import (
	"stitch/internal/clipboard"
	"stitch/internal/event"
	"stitch/internal/netaddr"
)

// KeyID identifies a key symbol.
type KeyID uint32

// KeyButton identifies a physical key position.
type KeyButton uint16

// KeyModifierMask is a bitmask of held modifiers.
type KeyModifierMask uint32

// ButtonID identifies a pointer button.
type ButtonID uint8

// GameDeviceID identifies a game controller.
type GameDeviceID uint8

// GameDeviceButton is a bitmask of controller buttons.
type GameDeviceButton uint16

// OptionsList is a flat list of option id/value pairs.
type OptionsList []uint32

// Stream is a bidirectional, event-driven byte stream. Reads are
// non-blocking: data is consumed from the layer's buffer in response to an
// input-ready event. Read and Write satisfy io.Reader and io.Writer so wire
// codecs can work on any layer.
type Stream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	// IsReady reports whether input is buffered and readable right now.
	IsReady() bool
	// EventTarget is the identity this layer posts its events against.
	EventTarget() any
	Close() error
}

// DataTransfer is the raw connection a transport factory produces. Connect
// initiates the dial; completion arrives as a ConnectedEvent or
// ConnectionFailedEvent against the transfer's event target.
type DataTransfer interface {
	Stream
	Connect(addr netaddr.Addr) error
}

// TransportFactory creates the raw connection for one dial attempt.
type TransportFactory func() (DataTransfer, error)

// FilterFactory wraps a stream with an additional filtering layer that owns
// the inner stream.
type FilterFactory func(inner Stream) Stream

// CryptoMode selects the cipher applied to the stream.
type CryptoMode int

const (
	CryptoDisabled CryptoMode = iota
	CryptoOFB
	CryptoCFB
	CryptoCTR
	CryptoGCM
)

// CryptoOptions configures the cipher layer.
type CryptoOptions struct {
	Mode CryptoMode
	Pass string
}

// CryptoStream is the cipher layer. It owns the stream it wraps; the client
// keeps only a non-owning handle to install the decryption IV.
type CryptoStream interface {
	Stream
	SetDecryptIv(iv []byte) error
}

// CryptoFactory wraps a stream with a cipher layer.
type CryptoFactory func(q *event.Queue, inner Stream, opts CryptoOptions) (CryptoStream, error)

// Screen is the local screen driver: input injection, clipboard access and
// geometry. The client borrows it; enabling and disabling bracket a session.
type Screen interface {
	EventTarget() any

	Enable()
	Disable()
	Enter(mask KeyModifierMask)
	Leave()
	Shape() (x, y, w, h int32)
	CursorPos() (x, y int32)

	GetClipboard(id clipboard.ID, cb *clipboard.Clipboard) bool
	SetClipboard(id clipboard.ID, cb *clipboard.Clipboard)
	GrabClipboard(id clipboard.ID)

	KeyDown(id KeyID, mask KeyModifierMask, button KeyButton)
	KeyRepeat(id KeyID, mask KeyModifierMask, count int32, button KeyButton)
	KeyUp(id KeyID, mask KeyModifierMask, button KeyButton)
	MouseDown(id ButtonID)
	MouseUp(id ButtonID)
	MouseMove(x, y int32)
	MouseRelativeMove(dx, dy int32)
	MouseWheel(xDelta, yDelta int32)

	Screensaver(activate bool)
	ResetOptions()
	SetOptions(opts OptionsList)

	GameDeviceButtons(id GameDeviceID, buttons GameDeviceButton)
	GameDeviceSticks(id GameDeviceID, x1, y1, x2, y2 int16)
	GameDeviceTriggers(id GameDeviceID, t1, t2 uint8)
	GameDeviceTimingReq()
}

// Receiver is the surface a server proxy drives on the client: the inbound
// half of the session plus the accessors the proxy reads.
type Receiver interface {
	Name() string
	HandshakeComplete()
	SetDecryptIv(iv []byte)

	Enter(xAbs, yAbs int32, seq uint32, mask KeyModifierMask, forScreensaver bool)
	Leave() bool
	Shape() (x, y, w, h int32)
	CursorPos() (x, y int32)

	GetClipboard(id clipboard.ID, cb *clipboard.Clipboard) bool
	SetClipboard(id clipboard.ID, cb *clipboard.Clipboard)
	GrabClipboard(id clipboard.ID)
	SetClipboardDirty(id clipboard.ID, dirty bool)

	KeyDown(id KeyID, mask KeyModifierMask, button KeyButton)
	KeyRepeat(id KeyID, mask KeyModifierMask, count int32, button KeyButton)
	KeyUp(id KeyID, mask KeyModifierMask, button KeyButton)
	MouseDown(id ButtonID)
	MouseUp(id ButtonID)
	MouseMove(x, y int32)
	MouseRelativeMove(dx, dy int32)
	MouseWheel(xDelta, yDelta int32)

	Screensaver(activate bool)
	ResetOptions()
	SetOptions(opts OptionsList)

	GameDeviceButtons(id GameDeviceID, buttons GameDeviceButton)
	GameDeviceSticks(id GameDeviceID, x1, y1, x2, y2 int16)
	GameDeviceTriggers(id GameDeviceID, t1, t2 uint8)
	GameDeviceTimingReq()
}

// ServerProxy speaks the post-handshake protocol with the server. The client
// notifies it of local changes; everything it reads off the stream it turns
// into Receiver calls.
type ServerProxy interface {
	OnInfoChanged()
	OnGrabClipboard(id clipboard.ID)
	OnClipboardChanged(id clipboard.ID, cb *clipboard.Clipboard)
	OnGameDeviceTimingResp(freq uint16)
	OnGameDeviceFeedback(id GameDeviceID, m1, m2 uint16)
	Close()
}

// ProxyFactory constructs the server proxy once the hello exchange is done.
// The proxy adopts the stream's input-ready handler, replacing the client's
// handshake handler, and drops it again in Close.
type ProxyFactory func(r Receiver, s Stream, q *event.Queue) ServerProxy
