package game

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

// RoomSpec describes a room's fixed parameters. Specs for named rooms are
// loaded from JSON assets; rooms created on the fly use FallbackRoomSpec.
type RoomSpec struct {
	MaxPlayers int     `json:"max_players"`
	SizeX      float64 `json:"size_x"`
	SizeY      float64 `json:"size_y"`

	// ProximityThreshold is reserved for neighbor detection. It is carried
	// through configuration but nothing consumes it yet.
	ProximityThreshold float64 `json:"proximity_threshold,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (s *RoomSpec) Validate() error {
	el := errors.NewErrorList()

	if s.MaxPlayers <= 0 {
		el.Add(fmt.Errorf("max_players must be a positive integer"))
	}
	if s.SizeX <= 0 {
		el.Add(fmt.Errorf("size_x must be positive"))
	}
	if s.SizeY <= 0 {
		el.Add(fmt.Errorf("size_y must be positive"))
	}
	if s.ProximityThreshold < 0 {
		el.Add(fmt.Errorf("proximity_threshold cannot be negative"))
	}

	return el.Err()
}

// DefaultRoomId is the room every session lands in when it does not ask
// for one. It exists for the lifetime of the world and is never pruned.
const DefaultRoomId = "default"

// DefaultRoomSpec returns the parameters the default room is created with
// when configuration does not override them.
func DefaultRoomSpec() *RoomSpec {
	return &RoomSpec{
		MaxPlayers:         50,
		SizeX:              1000,
		SizeY:              1000,
		ProximityThreshold: 50,
	}
}

// FallbackRoomSpec returns the fixed parameters for rooms created lazily
// by a room switch to an unknown id. Deliberately smaller than the default
// room so ad hoc rooms cannot absorb the whole population.
func FallbackRoomSpec() *RoomSpec {
	return &RoomSpec{
		MaxPlayers:         20,
		SizeX:              500,
		SizeY:              500,
		ProximityThreshold: 50,
	}
}

// Room holds live membership for a single room. It is not safe for
// concurrent use; the World serializes all access to it.
type Room struct {
	id   string
	spec *RoomSpec

	players map[string]*Player

	// dynamic rooms were created by a room switch and are eligible for
	// pruning once empty; named rooms persist.
	dynamic    bool
	emptySince time.Time
}

func NewRoom(id string, spec *RoomSpec) *Room {
	return &Room{
		id:      id,
		spec:    spec,
		players: make(map[string]*Player),
	}
}

func (r *Room) Id() string {
	return r.id
}

func (r *Room) Spec() *RoomSpec {
	return r.spec
}

// AddPlayer inserts the player keyed by id, overwriting any previous
// player with the same id. Returns ErrRoomFull at capacity.
func (r *Room) AddPlayer(p *Player) error {
	if len(r.players) >= r.spec.MaxPlayers {
		return fmt.Errorf("room %q: %w", r.id, ErrRoomFull)
	}

	p.RoomId = r.id
	r.players[p.ID] = p
	return nil
}

// RemovePlayer deletes the player. Removing an absent player is a no-op.
func (r *Room) RemovePlayer(playerId string) {
	delete(r.players, playerId)
}

// MovePlayer updates the player's position. A move for an absent player is
// silently ignored: a stale move arriving after a leave must not fail the
// pipeline. A move outside the room bounds is silently dropped and the
// last valid position retained.
func (r *Room) MovePlayer(playerId string, x, y float64) {
	p, ok := r.players[playerId]
	if !ok {
		return
	}

	if x < 0 || x > r.spec.SizeX || y < 0 || y > r.spec.SizeY {
		return
	}

	p.X = x
	p.Y = y
}

// GetPlayer returns the player, or nil if not present.
func (r *Room) GetPlayer(playerId string) *Player {
	return r.players[playerId]
}

// PlayerCount returns the number of players currently in the room.
func (r *Room) PlayerCount() int {
	return len(r.players)
}

// PlayerIds returns the ids of all current members.
func (r *Room) PlayerIds() []string {
	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot returns one record per current member with their live position.
func (r *Room) Snapshot() []PlayerSnapshot {
	snap := make([]PlayerSnapshot, 0, len(r.players))
	for _, p := range r.players {
		snap = append(snap, PlayerSnapshot{ID: p.ID, X: p.X, Y: p.Y})
	}
	return snap
}
