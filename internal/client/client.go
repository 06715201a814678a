// Package client implements the client side of the screen-sharing protocol:
// it dials the server, negotiates the hello handshake, then relays input,
// clipboard and game-device traffic between the server proxy and the local
// screen.
package client

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"stitch/internal/clipboard"
	"stitch/internal/event"
	"stitch/internal/netaddr"
	"stitch/internal/obs"
	"stitch/internal/proto"
	"stitch/internal/stream"
	"stitch/internal/types"
)

// DefaultConnectTimeout bounds dial plus handshake.
const DefaultConnectTimeout = 15 * time.Second

// Config carries the client's collaborators and identity. Transport, Screen
// and NewProxy are required; Filter and Crypto are optional layers.
type Config struct {
	// Name identifies this client in the handshake.
	Name string
	// ServerAddress is dialed on every connect; network addresses are
	// re-resolved each time.
	ServerAddress netaddr.Addr
	// Transport creates the raw connection for each attempt.
	Transport types.TransportFactory
	// Filter optionally wraps the raw connection before packetizing.
	Filter types.FilterFactory
	// Crypto selects the cipher layer; NewCrypto must be set when
	// Crypto.Mode is not CryptoDisabled.
	Crypto    types.CryptoOptions
	NewCrypto types.CryptoFactory
	// Screen is the borrowed local screen driver.
	Screen types.Screen
	// NewProxy constructs the server proxy after the hello exchange.
	NewProxy types.ProxyFactory
	// ConnectTimeout defaults to DefaultConnectTimeout when zero.
	ConnectTimeout time.Duration
}

// Client is the connection state machine. All methods and handlers run on
// the event-queue goroutine; presence of stream, timer and proxy encodes the
// state (idle, dialing, handshaking, active).
type Client struct {
	q   *event.Queue
	cfg Config

	stream       types.Stream
	transport    types.DataTransfer
	cryptoStream types.CryptoStream
	server       types.ServerProxy
	timer        *event.Timer

	ready           bool
	active          bool
	suspended       bool
	connectOnResume bool
	closed          bool

	session string

	ownClipboard  [clipboard.End]bool
	sentClipboard [clipboard.End]bool
	timeClipboard [clipboard.End]clipboard.Time
	dataClipboard [clipboard.End][]byte
}

// New creates a client and subscribes its lifetime handlers (suspend,
// resume, game-device reports). Call Close to detach them.
func New(q *event.Queue, cfg Config) *Client {
	if cfg.Transport == nil {
		panic("client: nil transport factory")
	}
	if cfg.Screen == nil {
		panic("client: nil screen")
	}
	if cfg.NewProxy == nil {
		panic("client: nil proxy factory")
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	c := &Client{q: q, cfg: cfg}
	t := c.eventTarget()
	q.AdoptHandler(types.SuspendEvent(), t, c.handleSuspend)
	q.AdoptHandler(types.ResumeEvent(), t, c.handleResume)
	q.AdoptHandler(types.GameDeviceTimingRespEvent(), t, c.handleGameDeviceTimingResp)
	q.AdoptHandler(types.GameDeviceFeedbackEvent(), t, c.handleGameDeviceFeedback)
	return c
}

// Close detaches all handlers and tears down any session. Idempotent.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true
	t := c.eventTarget()
	c.q.RemoveHandler(types.SuspendEvent(), t)
	c.q.RemoveHandler(types.ResumeEvent(), t)
	c.q.RemoveHandler(types.GameDeviceTimingRespEvent(), t)
	c.q.RemoveHandler(types.GameDeviceFeedbackEvent(), t)
	c.cleanupTimer()
	c.cleanupScreen()
	c.cleanupConnecting()
	c.cleanupConnection()
}

// Connect begins a connection attempt. Completion is reported through the
// lifecycle events: exactly one of connected, connection-failed or
// disconnected is published per attempt. While suspended the attempt is
// deferred until resume.
func (c *Client) Connect() {
	if c.stream != nil {
		return
	}
	if c.suspended {
		c.connectOnResume = true
		return
	}

	c.session = uuid.NewString()

	if err := c.dial(); err != nil {
		c.cleanupTimer()
		c.cleanupConnecting()
		if c.stream != nil {
			c.stream.Close()
			c.dropStream()
		}
		log.Printf("connection failed: %v", err)
		c.sendConnectionFailedEvent(err.Error(), "construct")
		return
	}
	obs.ConnectAttempts.Inc()
}

// dial resolves the address, builds the stream stack and starts the
// transport's connect. A stack that fails before it is installed as c.stream
// is closed here; any other teardown is left to the caller.
func (c *Client) dial() error {
	if na, ok := c.cfg.ServerAddress.(*netaddr.Network); ok {
		// resolve on every attempt; the address may have changed since
		// the last one
		if err := na.Resolve(); err != nil {
			return err
		}
		log.Printf("connecting to '%s': %s (session %s)", na.Host, na.ResolvedAddr(), c.session)
	}

	transport, err := c.cfg.Transport()
	if err != nil {
		return fmt.Errorf("create transport: %w", err)
	}
	c.transport = transport

	var s types.Stream = transport
	if c.cfg.Filter != nil {
		s = c.cfg.Filter(s)
	}
	s = stream.NewPacketizer(c.q, s)
	if c.cfg.Crypto.Mode != types.CryptoDisabled {
		if c.cfg.NewCrypto == nil {
			s.Close()
			c.transport = nil
			return errors.New("crypto mode set but no crypto factory")
		}
		cs, err := c.cfg.NewCrypto(c.q, s, c.cfg.Crypto)
		if err != nil {
			s.Close()
			c.transport = nil
			return fmt.Errorf("create crypto stream: %w", err)
		}
		c.cryptoStream = cs
		s = cs
	}
	c.stream = s

	c.setupConnecting()
	c.setupTimer()
	if err := transport.Connect(c.cfg.ServerAddress); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Disconnect ends the current attempt or session. A non-empty msg publishes
// connection-failed with that reason; otherwise disconnected is published.
// Calling it with nothing to tear down publishes nothing; it still cancels a
// connect deferred until resume.
func (c *Client) Disconnect(msg string) {
	c.connectOnResume = false
	if c.stream == nil && c.server == nil && c.timer == nil {
		return
	}
	c.cleanupTimer()
	c.cleanupScreen()
	c.cleanupConnecting()
	c.cleanupConnection()
	if msg != "" {
		c.sendConnectionFailedEvent(msg, "caller")
	} else {
		c.sendEvent(DisconnectedEvent(), nil)
	}
}

// HandshakeComplete is called by the server proxy once its own handshake
// concludes: the screen goes live and connected is published.
func (c *Client) HandshakeComplete() {
	c.ready = true
	c.cfg.Screen.Enable()
	obs.SessionActive.Set(1)
	c.sendEvent(ConnectedEvent(), nil)
}

// SetDecryptIv installs a decryption IV on the cipher layer, if one is
// present.
func (c *Client) SetDecryptIv(iv []byte) {
	if c.cryptoStream != nil {
		if err := c.cryptoStream.SetDecryptIv(iv); err != nil {
			log.Printf("set decrypt iv: %v", err)
		}
	}
}

// IsConnected reports whether the session reached the server proxy stage.
func (c *Client) IsConnected() bool { return c.server != nil }

// IsConnecting reports whether a dial or handshake is in flight.
func (c *Client) IsConnecting() bool { return c.timer != nil }

// ServerAddress returns the configured server address.
func (c *Client) ServerAddress() netaddr.Addr { return c.cfg.ServerAddress }

// Name returns the identity sent in the handshake.
func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) eventTarget() any { return c.cfg.Screen.EventTarget() }

func (c *Client) sendEvent(t event.Type, data any) {
	c.q.AddEvent(event.Event{Type: t, Target: c.eventTarget(), Data: data})
}

func (c *Client) sendConnectionFailedEvent(msg, reason string) {
	obs.ConnectFailures.WithLabelValues(reason).Inc()
	c.q.AddEvent(event.Event{
		Type:        ConnectionFailedEvent(),
		Target:      c.eventTarget(),
		Data:        &FailInfo{Message: msg, Retry: true},
		CallerOwned: true,
	})
}

// sendClipboard transmits clipboard id if its contents changed since the
// last send. Runs on the event-queue goroutine, as do all clipboard paths.
func (c *Client) sendClipboard(id clipboard.ID) {
	// set the clipboard time to the last observed time before reading;
	// the screen may detect an unchanged clipboard and skip the copy
	var cb clipboard.Clipboard
	if cb.Open(c.timeClipboard[id]) {
		cb.Close()
	}
	c.cfg.Screen.GetClipboard(id, &cb)

	if c.timeClipboard[id] != 0 && cb.Time() == c.timeClipboard[id] {
		return
	}
	c.timeClipboard[id] = cb.Time()

	data := cb.Marshal()
	if c.sentClipboard[id] && bytes.Equal(data, c.dataClipboard[id]) {
		obs.ClipboardSuppressed.Inc()
		return
	}
	c.sentClipboard[id] = true
	c.dataClipboard[id] = data
	c.server.OnClipboardChanged(id, &cb)
	obs.ClipboardSends.Inc()
}

// setup/cleanup fragments. Each is idempotent; fault paths run them in the
// order timer, screen, connecting, connection.

func (c *Client) setupConnecting() {
	t := c.stream.EventTarget()
	c.q.AdoptHandler(types.ConnectedEvent(), t, c.handleConnected)
	c.q.AdoptHandler(types.ConnectionFailedEvent(), t, c.handleConnectionFailed)
}

func (c *Client) setupConnection() {
	t := c.stream.EventTarget()
	c.q.AdoptHandler(types.DisconnectedEvent(), t, c.handleDisconnected)
	c.q.AdoptHandler(types.InputReadyEvent(), t, c.handleHello)
	c.q.AdoptHandler(types.OutputErrorEvent(), t, c.handleOutputError)
	c.q.AdoptHandler(types.InputShutdownEvent(), t, c.handleDisconnected)
	c.q.AdoptHandler(types.OutputShutdownEvent(), t, c.handleDisconnected)
}

func (c *Client) setupScreen() {
	c.ready = false
	c.server = c.cfg.NewProxy(c, c.stream, c.q)
	t := c.eventTarget()
	c.q.AdoptHandler(types.ShapeChangedEvent(), t, c.handleShapeChanged)
	c.q.AdoptHandler(types.ClipboardGrabbedEvent(), t, c.handleClipboardGrabbed)
}

func (c *Client) setupTimer() {
	c.timer = c.q.NewOneShotTimer(c.cfg.ConnectTimeout, nil)
	c.q.AdoptHandler(event.TypeTimer, c.timer.Target(), c.handleConnectTimeout)
}

func (c *Client) cleanupConnecting() {
	if c.stream != nil {
		t := c.stream.EventTarget()
		c.q.RemoveHandler(types.ConnectedEvent(), t)
		c.q.RemoveHandler(types.ConnectionFailedEvent(), t)
	}
}

func (c *Client) cleanupConnection() {
	if c.stream != nil {
		t := c.stream.EventTarget()
		c.q.RemoveHandler(types.DisconnectedEvent(), t)
		c.q.RemoveHandler(types.InputReadyEvent(), t)
		c.q.RemoveHandler(types.OutputErrorEvent(), t)
		c.q.RemoveHandler(types.InputShutdownEvent(), t)
		c.q.RemoveHandler(types.OutputShutdownEvent(), t)
		c.stream.Close()
		c.dropStream()
	}
}

func (c *Client) cleanupScreen() {
	if c.server != nil {
		if c.ready {
			c.cfg.Screen.Disable()
			c.ready = false
			obs.SessionActive.Set(0)
		}
		t := c.eventTarget()
		c.q.RemoveHandler(types.ShapeChangedEvent(), t)
		c.q.RemoveHandler(types.ClipboardGrabbedEvent(), t)
		c.server.Close()
		c.server = nil
	}
}

func (c *Client) cleanupTimer() {
	if c.timer != nil {
		c.q.RemoveHandler(event.TypeTimer, c.timer.Target())
		c.q.DeleteTimer(c.timer)
		c.timer = nil
	}
}

// dropStream clears the stream and its non-owning aliases.
func (c *Client) dropStream() {
	c.stream = nil
	c.transport = nil
	c.cryptoStream = nil
}

// event handlers

func (c *Client) handleConnected(event.Event) {
	log.Printf("connected; waiting for hello (session %s)", c.session)
	c.cleanupConnecting()
	c.setupConnection()

	for id := clipboard.ID(0); id < clipboard.End; id++ {
		c.ownClipboard[id] = false
		c.sentClipboard[id] = false
		c.timeClipboard[id] = 0
	}
}

func (c *Client) handleConnectionFailed(ev event.Event) {
	info, _ := ev.Data.(*types.ConnectionFailedInfo)
	c.cleanupTimer()
	c.cleanupConnecting()
	if c.stream != nil {
		c.stream.Close()
		c.dropStream()
	}
	what := "connection failed"
	if info != nil {
		what = info.What
	}
	log.Printf("connection failed: %s", what)
	c.sendConnectionFailedEvent(what, "dial")
}

func (c *Client) handleConnectTimeout(event.Event) {
	c.cleanupTimer()
	c.cleanupConnecting()
	c.cleanupConnection()
	log.Printf("connection timed out (session %s)", c.session)
	c.sendConnectionFailedEvent("Timed out", "timeout")
}

func (c *Client) handleOutputError(event.Event) {
	c.cleanupTimer()
	c.cleanupScreen()
	c.cleanupConnection()
	log.Printf("error sending to server")
	obs.Disconnects.Inc()
	c.sendEvent(DisconnectedEvent(), nil)
}

func (c *Client) handleDisconnected(event.Event) {
	c.cleanupTimer()
	c.cleanupScreen()
	c.cleanupConnection()
	log.Printf("disconnected (session %s)", c.session)
	obs.Disconnects.Inc()
	c.sendEvent(DisconnectedEvent(), nil)
}

func (c *Client) handleShapeChanged(event.Event) {
	log.Printf("resolution changed")
	c.server.OnInfoChanged()
}

func (c *Client) handleClipboardGrabbed(ev event.Event) {
	info := ev.Data.(*types.ClipboardInfo)

	c.server.OnGrabClipboard(info.ID)

	// we own the clipboard now; a re-grab of one we already own keeps its
	// sent state so unchanged contents aren't resent
	if !c.ownClipboard[info.ID] {
		c.sentClipboard[info.ID] = false
	}
	c.ownClipboard[info.ID] = true
	c.timeClipboard[info.ID] = 0

	// if we're not the active screen, send it now; otherwise it goes out
	// when the cursor leaves
	if !c.active {
		c.sendClipboard(info.ID)
	}
}

func (c *Client) handleHello(event.Event) {
	major, minor, err := proto.ReadHello(c.stream)
	if err != nil {
		c.sendConnectionFailedEvent("Protocol error from server", "protocol")
		c.cleanupTimer()
		c.cleanupConnection()
		return
	}

	log.Printf("got hello version %d.%d", major, minor)
	if major < proto.MajorVersion ||
		(major == proto.MajorVersion && minor < proto.MinorVersion) {
		msg := fmt.Sprintf("server is running an older version of the protocol (%d.%d)", major, minor)
		c.sendConnectionFailedEvent(msg, "version")
		c.cleanupTimer()
		c.cleanupConnection()
		return
	}

	log.Printf("say hello version %d.%d", proto.MajorVersion, proto.MinorVersion)
	if err := proto.WriteHelloBack(c.stream, proto.MajorVersion, proto.MinorVersion, c.cfg.Name); err != nil {
		c.sendConnectionFailedEvent("Protocol error from server", "protocol")
		c.cleanupTimer()
		c.cleanupConnection()
		return
	}

	// connected; the server proxy finishes the handshake from here
	c.setupScreen()
	c.cleanupTimer()

	// already-buffered messages won't raise another input-ready, so fake
	// one for the proxy
	if c.stream.IsReady() {
		c.q.AddEvent(event.Event{
			Type:   types.InputReadyEvent(),
			Target: c.stream.EventTarget(),
		})
	}
}

func (c *Client) handleSuspend(event.Event) {
	log.Printf("suspend")
	c.suspended = true
	wasConnected := c.IsConnected()
	c.Disconnect("")
	c.connectOnResume = wasConnected
}

func (c *Client) handleResume(event.Event) {
	log.Printf("resume")
	c.suspended = false
	if c.connectOnResume {
		c.connectOnResume = false
		c.Connect()
	}
}

func (c *Client) handleGameDeviceTimingResp(ev event.Event) {
	if c.server == nil {
		return
	}
	info := ev.Data.(*types.GameDeviceTimingRespInfo)
	c.server.OnGameDeviceTimingResp(info.Freq)
}

func (c *Client) handleGameDeviceFeedback(ev event.Event) {
	if c.server == nil {
		return
	}
	info := ev.Data.(*types.GameDeviceFeedbackInfo)
	c.server.OnGameDeviceFeedback(info.ID, info.M1, info.M2)
}
