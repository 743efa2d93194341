package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWorldDefaultRoom(t *testing.T) {
	w := NewWorld()

	if !w.HasRoom(DefaultRoomId) {
		t.Fatal("default room should exist on a fresh world")
	}

	snap, err := w.RoomSnapshot(DefaultRoomId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 0 {
		t.Errorf("expected empty default room, got %d members", len(snap))
	}
}

func TestWorldJoinMoveSnapshot(t *testing.T) {
	w := NewWorld()

	if err := w.AddPlayer("p1", DefaultRoomId, 0, 0); err != nil {
		t.Fatalf("adding p1: %v", err)
	}
	if err := w.AddPlayer("p2", DefaultRoomId, 0, 0); err != nil {
		t.Fatalf("adding p2: %v", err)
	}
	if err := w.MovePlayer("p1", 100, 200); err != nil {
		t.Fatalf("moving p1: %v", err)
	}

	snap, err := w.RoomSnapshot(DefaultRoomId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("expected 2 records, got %d", len(snap))
	}

	for _, rec := range snap {
		if rec.ID == "p1" && (rec.X != 100 || rec.Y != 200) {
			t.Errorf("p1 at (%v, %v), expected (100, 200)", rec.X, rec.Y)
		}
	}
}

func TestWorldAddPlayerRoomNotFound(t *testing.T) {
	w := NewWorld()

	err := w.AddPlayer("p1", "nowhere", 0, 0)
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	// The index must not record a player the room never accepted.
	if _, ok := w.PlayerRoom("p1"); ok {
		t.Error("p1 should not be indexed after a failed add")
	}
}

func TestWorldAddPlayerRoomFull(t *testing.T) {
	w := NewWorld(WithRoom("tiny", &RoomSpec{MaxPlayers: 1, SizeX: 10, SizeY: 10}))

	if err := w.AddPlayer("p1", "tiny", 0, 0); err != nil {
		t.Fatalf("adding p1: %v", err)
	}

	err := w.AddPlayer("p2", "tiny", 0, 0)
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if _, ok := w.PlayerRoom("p2"); ok {
		t.Error("p2 should not be indexed after a rejected add")
	}
}

func TestWorldRemovePlayer(t *testing.T) {
	w := NewWorld()
	_ = w.AddPlayer("p1", DefaultRoomId, 0, 0)

	roomId, err := w.RemovePlayer("p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if roomId != DefaultRoomId {
		t.Errorf("expected origin %q, got %q", DefaultRoomId, roomId)
	}

	// Second removal reports the player gone.
	_, err = w.RemovePlayer("p1")
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}

	snap, _ := w.RoomSnapshot(DefaultRoomId)
	if len(snap) != 0 {
		t.Errorf("expected empty room after removal, got %d members", len(snap))
	}
}

func TestWorldMovePlayerNotFound(t *testing.T) {
	w := NewWorld()

	err := w.MovePlayer("ghost", 1, 1)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestWorldCreateRoomDuplicate(t *testing.T) {
	w := NewWorld()

	if err := w.CreateRoom("arena", &RoomSpec{MaxPlayers: 10, SizeX: 50, SizeY: 50}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := w.CreateRoom("arena", &RoomSpec{MaxPlayers: 99, SizeX: 5, SizeY: 5})
	if !errors.Is(err, ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
}

func TestWorldSwitchPlayerRoom(t *testing.T) {
	w := NewWorld(WithRoom("a", &RoomSpec{MaxPlayers: 10, SizeX: 100, SizeY: 100}))
	_ = w.AddPlayer("p1", "a", 5, 5)

	origin, switched, err := w.SwitchPlayerRoom("p1", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !switched {
		t.Fatal("expected a switch to happen")
	}
	if origin != "a" {
		t.Errorf("expected origin %q, got %q", "a", origin)
	}

	// Room b was auto-created with the fallback parameters.
	if !w.HasRoom("b") {
		t.Fatal("room b should have been created")
	}

	if roomId, _ := w.PlayerRoom("p1"); roomId != "b" {
		t.Errorf("p1 indexed to %q, expected b", roomId)
	}
	aSnap, _ := w.RoomSnapshot("a")
	if len(aSnap) != 0 {
		t.Errorf("room a should no longer contain p1, got %d members", len(aSnap))
	}
	bSnap, _ := w.RoomSnapshot("b")
	if len(bSnap) != 1 || bSnap[0].ID != "p1" {
		t.Errorf("room b should contain exactly p1, got %+v", bSnap)
	}
}

func TestWorldSwitchPlayerRoomSameRoom(t *testing.T) {
	w := NewWorld()
	_ = w.AddPlayer("p1", DefaultRoomId, 5, 5)

	origin, switched, err := w.SwitchPlayerRoom("p1", DefaultRoomId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if switched {
		t.Error("switching to the current room should be a no-op")
	}
	if origin != DefaultRoomId {
		t.Errorf("expected origin %q, got %q", DefaultRoomId, origin)
	}
}

func TestWorldSwitchPlayerRoomFullTarget(t *testing.T) {
	w := NewWorld(WithRoom("tiny", &RoomSpec{MaxPlayers: 1, SizeX: 10, SizeY: 10}))
	_ = w.AddPlayer("occupant", "tiny", 0, 0)
	_ = w.AddPlayer("p1", DefaultRoomId, 5, 5)

	_, _, err := w.SwitchPlayerRoom("p1", "tiny")
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}

	// A failed switch leaves the player exactly where they were.
	if roomId, _ := w.PlayerRoom("p1"); roomId != DefaultRoomId {
		t.Errorf("p1 indexed to %q, expected %q", roomId, DefaultRoomId)
	}
	snap, _ := w.RoomSnapshot(DefaultRoomId)
	if len(snap) != 1 {
		t.Errorf("p1 should still be in the default room, got %d members", len(snap))
	}
}

func TestWorldSwitchPlayerRoomNotFound(t *testing.T) {
	w := NewWorld()

	_, _, err := w.SwitchPlayerRoom("ghost", "anywhere")
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

// Single-room invariant: a player re-added under the same id lands in
// exactly the room the index names, and no other.
func TestWorldReAddPlayerMovesMembership(t *testing.T) {
	w := NewWorld(WithRoom("a", &RoomSpec{MaxPlayers: 10, SizeX: 100, SizeY: 100}))
	_ = w.AddPlayer("p1", "a", 1, 1)
	_ = w.AddPlayer("p1", DefaultRoomId, 2, 2)

	if roomId, _ := w.PlayerRoom("p1"); roomId != DefaultRoomId {
		t.Fatalf("p1 indexed to %q, expected %q", roomId, DefaultRoomId)
	}
	aSnap, _ := w.RoomSnapshot("a")
	if len(aSnap) != 0 {
		t.Errorf("room a should not retain p1, got %d members", len(aSnap))
	}
}

func TestWorldRoomMembers(t *testing.T) {
	w := NewWorld()
	_ = w.AddPlayer("p1", DefaultRoomId, 0, 0)
	_ = w.AddPlayer("p2", DefaultRoomId, 0, 0)

	members, err := w.RoomMembers(DefaultRoomId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("expected 2 members, got %d", len(members))
	}

	_, err = w.RoomMembers("nowhere")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestWorldTickPrunesDynamicRooms(t *testing.T) {
	w := NewWorld(
		WithRoom("named", &RoomSpec{MaxPlayers: 10, SizeX: 100, SizeY: 100}),
		WithEmptyRoomGrace(time.Millisecond),
	)
	_ = w.AddPlayer("p1", DefaultRoomId, 0, 0)

	// Leaving a dynamic room marks it empty.
	_, _, err := w.SwitchPlayerRoom("p1", "popup")
	if err != nil {
		t.Fatalf("switching to popup: %v", err)
	}
	if _, _, err := w.SwitchPlayerRoom("p1", DefaultRoomId); err != nil {
		t.Fatalf("switching back: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if w.HasRoom("popup") {
		t.Error("empty dynamic room should have been pruned")
	}
	if !w.HasRoom("named") || !w.HasRoom(DefaultRoomId) {
		t.Error("named rooms must never be pruned")
	}
}

func TestWorldTickKeepsOccupiedDynamicRooms(t *testing.T) {
	w := NewWorld(WithEmptyRoomGrace(time.Millisecond))
	_ = w.AddPlayer("p1", DefaultRoomId, 0, 0)
	_, _, _ = w.SwitchPlayerRoom("p1", "popup")

	time.Sleep(5 * time.Millisecond)
	if err := w.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if !w.HasRoom("popup") {
		t.Error("occupied dynamic room must not be pruned")
	}
}
