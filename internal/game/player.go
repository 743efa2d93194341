package game

// Player holds one participant's position within a room.
type Player struct {
	ID string

	X float64
	Y float64

	// RoomId is a back-reference kept for fast lookup only. The world's
	// player index owns membership; never route mutations through this.
	RoomId string
}

// PlayerSnapshot is one row of a room snapshot, in wire form.
type PlayerSnapshot struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}
