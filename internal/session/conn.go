package session

// Conn is the minimal surface the session layer needs from a transport
// connection. The websocket listener adapts gorilla connections to it;
// tests drive scripted implementations.
type Conn interface {
	// ReadMessage blocks until the next inbound frame or transport error.
	ReadMessage() ([]byte, error)
	// WriteMessage sends one outbound frame.
	WriteMessage(data []byte) error
	Close() error
}
