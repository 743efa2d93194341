package events

// Event kinds accepted from clients. Anything else is ignored for forward
// compatibility.
const (
	KindJoin       = "JOIN"
	KindMove       = "MOVE"
	KindLeave      = "LEAVE"
	KindSwitchRoom = "SWITCH_ROOM"
)

// Event is a decoded client intent. Events are built per inbound message
// and not retained. Actor is always the server-assigned session id; it is
// never taken from the message body.
type Event struct {
	Kind    string
	Actor   string
	Payload map[string]any
}

// String returns the payload field as a string, or "" if absent or not a
// string.
func (e *Event) String(field string) string {
	s, _ := e.Payload[field].(string)
	return s
}

// Number returns the payload field as a float64 and whether it was a JSON
// number.
func (e *Event) Number(field string) (float64, bool) {
	f, ok := e.Payload[field].(float64)
	return f, ok
}
