package types

import (
	"stitch/internal/clipboard"
	"stitch/internal/event"
)

// Event types posted by transports and stream layers. A wrapping layer
// re-posts the inner layer's events against its own target so subscribers
// only ever watch the outermost stream.
var (
	connectedEvent        event.Type
	connectionFailedEvent event.Type
	disconnectedEvent     event.Type
	inputReadyEvent       event.Type
	outputErrorEvent      event.Type
	inputShutdownEvent    event.Type
	outputShutdownEvent   event.Type
)

// ConnectedEvent is posted when a dial completes.
func ConnectedEvent() event.Type {
	return event.RegisterTypeOnce(&connectedEvent, "transfer.connected")
}

// ConnectionFailedEvent is posted when a dial fails; Data is
// *ConnectionFailedInfo.
func ConnectionFailedEvent() event.Type {
	return event.RegisterTypeOnce(&connectionFailedEvent, "transfer.connectionFailed")
}

// DisconnectedEvent is posted when the peer or transport drops the
// connection.
func DisconnectedEvent() event.Type {
	return event.RegisterTypeOnce(&disconnectedEvent, "transfer.disconnected")
}

// InputReadyEvent is posted when buffered input is readable.
func InputReadyEvent() event.Type {
	return event.RegisterTypeOnce(&inputReadyEvent, "stream.inputReady")
}

// OutputErrorEvent is posted when a write fails asynchronously.
func OutputErrorEvent() event.Type {
	return event.RegisterTypeOnce(&outputErrorEvent, "stream.outputError")
}

// InputShutdownEvent is posted when the read side is closed by the peer.
func InputShutdownEvent() event.Type {
	return event.RegisterTypeOnce(&inputShutdownEvent, "stream.inputShutdown")
}

// OutputShutdownEvent is posted when the write side is closed.
func OutputShutdownEvent() event.Type {
	return event.RegisterTypeOnce(&outputShutdownEvent, "stream.outputShutdown")
}

// ConnectionFailedInfo carries the transport's reason for a failed dial.
type ConnectionFailedInfo struct {
	What string
}

// Event types posted by the screen against its event target.
var (
	suspendEvent            event.Type
	resumeEvent             event.Type
	shapeChangedEvent       event.Type
	clipboardGrabbedEvent   event.Type
	gameDeviceTimingEvent   event.Type
	gameDeviceFeedbackEvent event.Type
)

// SuspendEvent is posted when the system is about to sleep.
func SuspendEvent() event.Type {
	return event.RegisterTypeOnce(&suspendEvent, "screen.suspend")
}

// ResumeEvent is posted when the system wakes.
func ResumeEvent() event.Type {
	return event.RegisterTypeOnce(&resumeEvent, "screen.resume")
}

// ShapeChangedEvent is posted when display geometry changes.
func ShapeChangedEvent() event.Type {
	return event.RegisterTypeOnce(&shapeChangedEvent, "screen.shapeChanged")
}

// ClipboardGrabbedEvent is posted when a local application takes clipboard
// ownership; Data is *ClipboardInfo.
func ClipboardGrabbedEvent() event.Type {
	return event.RegisterTypeOnce(&clipboardGrabbedEvent, "screen.clipboardGrabbed")
}

// GameDeviceTimingRespEvent is posted with a *GameDeviceTimingRespInfo when
// the local game device reports its polling frequency.
func GameDeviceTimingRespEvent() event.Type {
	return event.RegisterTypeOnce(&gameDeviceTimingEvent, "screen.gameDeviceTimingResp")
}

// GameDeviceFeedbackEvent is posted with a *GameDeviceFeedbackInfo when the
// local game device reports force-feedback state.
func GameDeviceFeedbackEvent() event.Type {
	return event.RegisterTypeOnce(&gameDeviceFeedbackEvent, "screen.gameDeviceFeedback")
}

// ClipboardInfo identifies the grabbed clipboard channel.
type ClipboardInfo struct {
	ID clipboard.ID
}

// GameDeviceTimingRespInfo carries the device polling frequency.
type GameDeviceTimingRespInfo struct {
	Freq uint16
}

// GameDeviceFeedbackInfo carries force-feedback motor magnitudes.
type GameDeviceFeedbackInfo struct {
	ID     GameDeviceID
	M1, M2 uint16
}
