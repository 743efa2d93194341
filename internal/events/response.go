package events

import "github.com/pixil98/go-presence/internal/game"

// Outbound message types.
const (
	TypeJoinAccepted       = "JOIN_ACCEPTED"
	TypeJoinRejected       = "JOIN_REJECTED"
	TypeRoomState          = "ROOM_STATE"
	TypeRoomSwitchAccepted = "ROOM_SWITCH_ACCEPTED"
)

// Response is an outbound payload in wire form. Fields beyond Type are
// populated per message type.
type Response struct {
	Type    string                `json:"type"`
	YourId  string                `json:"your_id,omitempty"`
	RoomId  string                `json:"room_id,omitempty"`
	Players []game.PlayerSnapshot `json:"players,omitempty"`
	Reason  string                `json:"reason,omitempty"`
}

// RoomUpdate pairs a response with the room whose audience should
// receive it.
type RoomUpdate struct {
	RoomId string
	Msg    *Response
}

// Result is what one dispatched event produces: an optional response for
// the acting session and zero or more room-scoped broadcasts. A nil
// Result means the transport must emit nothing.
type Result struct {
	Actor *Response
	Rooms []RoomUpdate
}
