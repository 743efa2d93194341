package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// World is the single source of truth for room membership. It owns every
// room and the authoritative player→room index, and serializes all core
// mutations behind one lock so no room or index entry is ever observed
// half-updated.
type World struct {
	mu sync.RWMutex

	rooms      map[string]*Room
	playerRoom map[string]string

	emptyRoomGrace time.Duration
}

const DefaultEmptyRoomGrace = 5 * time.Minute

// NewWorld creates a world containing the default room.
func NewWorld(opts ...WorldOpt) *World {
	w := &World{
		rooms:          make(map[string]*Room),
		playerRoom:     make(map[string]string),
		emptyRoomGrace: DefaultEmptyRoomGrace,
	}

	for _, opt := range opts {
		opt(w)
	}

	if _, ok := w.rooms[DefaultRoomId]; !ok {
		w.rooms[DefaultRoomId] = NewRoom(DefaultRoomId, DefaultRoomSpec())
	}

	return w
}

// CreateRoom installs a named room. Ids are never reused while live: a
// second room under an existing id would orphan the index entries of the
// first one's members, so this errors with ErrRoomExists instead.
func (w *World) CreateRoom(id string, spec *RoomSpec) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.rooms[id]; ok {
		return fmt.Errorf("room %q: %w", id, ErrRoomExists)
	}

	w.rooms[id] = NewRoom(id, spec)
	return nil
}

// AddPlayer creates a player at (x, y) and places them in the given room.
// The index entry is written only after the room accepts the player.
func (w *World) AddPlayer(playerId, roomId string, x, y float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	room, ok := w.rooms[roomId]
	if !ok {
		return fmt.Errorf("adding player %q: room %q: %w", playerId, roomId, ErrRoomNotFound)
	}

	err := room.AddPlayer(&Player{ID: playerId, X: x, Y: y})
	if err != nil {
		return err
	}

	// A player indexed elsewhere was re-added under the same id; evict the
	// stale membership so the index names exactly one room.
	if prevId, ok := w.playerRoom[playerId]; ok && prevId != roomId {
		if prev, ok := w.rooms[prevId]; ok {
			prev.RemovePlayer(playerId)
			w.noteIfEmpty(prev)
		}
	}

	w.playerRoom[playerId] = roomId
	return nil
}

// RemovePlayer removes the player from the world and returns the room they
// occupied. The index is authoritative for existence: room removal is best
// effort and a missing room does not fail the operation.
func (w *World) RemovePlayer(playerId string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	roomId, ok := w.playerRoom[playerId]
	if !ok {
		return "", fmt.Errorf("removing player %q: %w", playerId, ErrPlayerNotFound)
	}
	delete(w.playerRoom, playerId)

	if room, ok := w.rooms[roomId]; ok {
		room.RemovePlayer(playerId)
		w.noteIfEmpty(room)
	}

	return roomId, nil
}

// MovePlayer routes a position update to the player's current room. An
// index entry naming a missing room means the index was corrupted; that
// surfaces as an ErrRoomNotFound the caller should treat as an invariant
// violation, not user error.
func (w *World) MovePlayer(playerId string, x, y float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	roomId, ok := w.playerRoom[playerId]
	if !ok {
		return fmt.Errorf("moving player %q: %w", playerId, ErrPlayerNotFound)
	}

	room, ok := w.rooms[roomId]
	if !ok {
		return fmt.Errorf("player %q indexed to missing room %q: %w", playerId, roomId, ErrRoomNotFound)
	}

	room.MovePlayer(playerId, x, y)
	return nil
}

// SwitchPlayerRoom moves the player into the target room as one
// transition, creating the room from FallbackRoomSpec if it does not
// exist. The destination's capacity is checked before the origin is
// mutated, so a full target leaves the player exactly where they were.
// Returns the origin room id and whether a switch happened; switching to
// the current room is a no-op.
func (w *World) SwitchPlayerRoom(playerId, roomId string) (origin string, switched bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	origin, ok := w.playerRoom[playerId]
	if !ok {
		return "", false, fmt.Errorf("switching player %q: %w", playerId, ErrPlayerNotFound)
	}
	if origin == roomId {
		return origin, false, nil
	}

	target, ok := w.rooms[roomId]
	if !ok {
		target = NewRoom(roomId, FallbackRoomSpec())
		target.dynamic = true
		w.rooms[roomId] = target
	}

	// Entering a room resets the player to the origin corner.
	err = target.AddPlayer(&Player{ID: playerId})
	if err != nil {
		return origin, false, err
	}

	if prev, ok := w.rooms[origin]; ok {
		prev.RemovePlayer(playerId)
		w.noteIfEmpty(prev)
	}
	w.playerRoom[playerId] = roomId

	return origin, true, nil
}

// RoomSnapshot returns a point-in-time listing of the room's members.
func (w *World) RoomSnapshot(roomId string) ([]PlayerSnapshot, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	room, ok := w.rooms[roomId]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", roomId, ErrRoomNotFound)
	}

	return room.Snapshot(), nil
}

// RoomMembers returns the player ids currently in the room. Broadcast
// audiences are derived from this, so transport-side delivery always
// matches world-side membership.
func (w *World) RoomMembers(roomId string) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	room, ok := w.rooms[roomId]
	if !ok {
		return nil, fmt.Errorf("room %q: %w", roomId, ErrRoomNotFound)
	}

	return room.PlayerIds(), nil
}

// PlayerRoom returns the id of the room the player is in.
func (w *World) PlayerRoom(playerId string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	roomId, ok := w.playerRoom[playerId]
	return roomId, ok
}

// PlayerCount returns the number of players in the world.
func (w *World) PlayerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.playerRoom)
}

// HasRoom reports whether a room with the given id exists.
func (w *World) HasRoom(roomId string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, ok := w.rooms[roomId]
	return ok
}

// Tick prunes dynamically created rooms that have sat empty past the
// grace period. Named rooms are durable spaces and never pruned.
func (w *World) Tick(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	for id, room := range w.rooms {
		if !room.dynamic || room.PlayerCount() > 0 {
			continue
		}
		if room.emptySince.IsZero() || now.Sub(room.emptySince) < w.emptyRoomGrace {
			continue
		}
		delete(w.rooms, id)
		slog.InfoContext(ctx, "pruned empty room", "room", id)
	}

	return nil
}

// noteIfEmpty stamps the moment a room last emptied. Caller must hold the
// write lock.
func (w *World) noteIfEmpty(room *Room) {
	if room.PlayerCount() == 0 {
		room.emptySince = time.Now()
	}
}
