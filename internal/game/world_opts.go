package game

import "time"

type WorldOpt func(*World)

// WithRoom pre-creates a named room before the default room is installed.
func WithRoom(id string, spec *RoomSpec) WorldOpt {
	return func(w *World) {
		w.rooms[id] = NewRoom(id, spec)
	}
}

// WithEmptyRoomGrace sets how long a dynamically created room may sit
// empty before the tick janitor prunes it.
func WithEmptyRoomGrace(d time.Duration) WorldOpt {
	return func(w *World) {
		w.emptyRoomGrace = d
	}
}
