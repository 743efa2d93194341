package game

import (
	"errors"
	"fmt"
	"testing"
)

func TestRoomAddPlayerCapacity(t *testing.T) {
	room := NewRoom("test-room", &RoomSpec{MaxPlayers: 1, SizeX: 100, SizeY: 100})

	if err := room.AddPlayer(&Player{ID: "p1"}); err != nil {
		t.Fatalf("unexpected error adding p1: %v", err)
	}

	err := room.AddPlayer(&Player{ID: "p2"})
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}

	if room.PlayerCount() != 1 {
		t.Errorf("expected 1 player after rejected add, got %d", room.PlayerCount())
	}
	if room.GetPlayer("p1") == nil {
		t.Error("p1 should still be in the room")
	}
}

func TestRoomCapacityInvariant(t *testing.T) {
	room := NewRoom("test-room", &RoomSpec{MaxPlayers: 3, SizeX: 100, SizeY: 100})

	// Interleave adds and removes; membership may never exceed capacity.
	for i := 0; i < 10; i++ {
		_ = room.AddPlayer(&Player{ID: fmt.Sprintf("p%d", i)})
		if room.PlayerCount() > 3 {
			t.Fatalf("capacity exceeded: %d players", room.PlayerCount())
		}
		if i%2 == 0 {
			room.RemovePlayer(fmt.Sprintf("p%d", i))
		}
	}
}

func TestRoomRemovePlayerIdempotent(t *testing.T) {
	room := NewRoom("test-room", &RoomSpec{MaxPlayers: 5, SizeX: 100, SizeY: 100})
	_ = room.AddPlayer(&Player{ID: "p1"})

	room.RemovePlayer("p1")
	room.RemovePlayer("p1") // second removal is a no-op
	room.RemovePlayer("never-existed")

	if room.PlayerCount() != 0 {
		t.Errorf("expected empty room, got %d players", room.PlayerCount())
	}
}

func TestRoomMovePlayer(t *testing.T) {
	tests := map[string]struct {
		x, y       float64
		expX, expY float64
	}{
		"in bounds":         {x: 50, y: 60, expX: 50, expY: 60},
		"on boundary":       {x: 100, y: 100, expX: 100, expY: 100},
		"origin":            {x: 0, y: 0, expX: 0, expY: 0},
		"negative x":        {x: -5, y: 10, expX: 10, expY: 10},
		"negative y":        {x: 5, y: -10, expX: 10, expY: 10},
		"past x bound":      {x: 100.5, y: 10, expX: 10, expY: 10},
		"past y bound":      {x: 5, y: 1000, expX: 10, expY: 10},
		"both out of range": {x: -1, y: 101, expX: 10, expY: 10},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			room := NewRoom("test-room", &RoomSpec{MaxPlayers: 5, SizeX: 100, SizeY: 100})
			_ = room.AddPlayer(&Player{ID: "p1", X: 10, Y: 10})

			room.MovePlayer("p1", tt.x, tt.y)

			p := room.GetPlayer("p1")
			if p.X != tt.expX || p.Y != tt.expY {
				t.Errorf("expected (%v, %v), got (%v, %v)", tt.expX, tt.expY, p.X, p.Y)
			}
		})
	}
}

func TestRoomMoveAbsentPlayer(t *testing.T) {
	room := NewRoom("test-room", &RoomSpec{MaxPlayers: 5, SizeX: 100, SizeY: 100})

	// A stale move after a leave must not panic or mutate anything.
	room.MovePlayer("ghost", 10, 10)

	if room.PlayerCount() != 0 {
		t.Errorf("expected empty room, got %d players", room.PlayerCount())
	}
}

func TestRoomSnapshot(t *testing.T) {
	room := NewRoom("test-room", &RoomSpec{MaxPlayers: 5, SizeX: 100, SizeY: 100})
	_ = room.AddPlayer(&Player{ID: "p1", X: 1, Y: 2})
	_ = room.AddPlayer(&Player{ID: "p2", X: 3, Y: 4})

	snap := room.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap))
	}

	byId := map[string]PlayerSnapshot{}
	for _, rec := range snap {
		byId[rec.ID] = rec
	}
	if rec := byId["p1"]; rec.X != 1 || rec.Y != 2 {
		t.Errorf("p1 record mismatch: %+v", rec)
	}
	if rec := byId["p2"]; rec.X != 3 || rec.Y != 4 {
		t.Errorf("p2 record mismatch: %+v", rec)
	}
}

func TestRoomSpecValidate(t *testing.T) {
	tests := map[string]struct {
		spec   RoomSpec
		expErr bool
	}{
		"valid":              {spec: RoomSpec{MaxPlayers: 10, SizeX: 100, SizeY: 100}, expErr: false},
		"valid with threshold": {
			spec: RoomSpec{MaxPlayers: 10, SizeX: 100, SizeY: 100, ProximityThreshold: 25}, expErr: false,
		},
		"zero capacity":      {spec: RoomSpec{MaxPlayers: 0, SizeX: 100, SizeY: 100}, expErr: true},
		"negative capacity":  {spec: RoomSpec{MaxPlayers: -1, SizeX: 100, SizeY: 100}, expErr: true},
		"zero size_x":        {spec: RoomSpec{MaxPlayers: 10, SizeX: 0, SizeY: 100}, expErr: true},
		"zero size_y":        {spec: RoomSpec{MaxPlayers: 10, SizeX: 100, SizeY: 0}, expErr: true},
		"negative threshold": {spec: RoomSpec{MaxPlayers: 10, SizeX: 100, SizeY: 100, ProximityThreshold: -1}, expErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.expErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expErr && err != nil {
				t.Errorf("expected nil error, got %v", err)
			}
		})
	}
}
