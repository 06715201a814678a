// Package proto encodes the handshake frames the client owns. Every later
// frame belongs to the server proxy; only the hello exchange is decoded here.
package proto

// Protocol version spoken by this client.
const (
	MajorVersion uint16 = 1
	MinorVersion uint16 = 6
)

// Magic opens both hello frames. A frame that does not start with it is a
// protocol error.
var Magic = []byte("Stitch")

// MaxNameLength bounds the client name in a HelloBack frame.
const MaxNameLength = 256
