package handlers

// Custom WebSocket close codes, more specific than the standard set.
const (
	// BadSubprotocolError signals a client that connected without the
	// expected subprotocol.
	BadSubprotocolError = 3000
)
