package client

import "stitch/internal/event"

// Public lifecycle events, addressed to the client's event target (the
// screen's target, so subscribers can watch a single identity).
var (
	connectedEvent        event.Type
	connectionFailedEvent event.Type
	disconnectedEvent     event.Type
)

// ConnectedEvent is published once the handshake completes and the session
// is live. No payload.
func ConnectedEvent() event.Type {
	return event.RegisterTypeOnce(&connectedEvent, "client.connected")
}

// ConnectionFailedEvent is published when a connect attempt terminates
// without a session. Data is a *FailInfo owned by the receiver.
func ConnectionFailedEvent() event.Type {
	return event.RegisterTypeOnce(&connectionFailedEvent, "client.failed")
}

// DisconnectedEvent is published when a connection ends without a failure
// reason: the peer or transport drops it after the dial completed, a write
// fails, or Disconnect is called without a message (also while an attempt is
// still in flight). No payload.
func DisconnectedEvent() event.Type {
	return event.RegisterTypeOnce(&disconnectedEvent, "client.disconnected")
}

// FailInfo is the connection-failed payload. Retry is advisory; the client
// itself never retries.
type FailInfo struct {
	Message string
	Retry   bool
}
