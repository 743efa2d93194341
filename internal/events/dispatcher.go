package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-presence/internal/game"
)

// Dispatcher translates client intents into world mutations and outbound
// payloads. It holds no state beyond the world reference; every transition
// is a single synchronous world call.
type Dispatcher struct {
	world *game.World
}

func NewDispatcher(world *game.World) *Dispatcher {
	return &Dispatcher{world: world}
}

// Dispatch processes one event. A nil result with a nil error means the
// event was a no-op (unknown kind, malformed payload, redundant switch)
// and nothing should be sent. Errors mean the event failed; they never
// indicate the process should stop.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) (*Result, error) {
	switch ev.Kind {
	case KindJoin:
		return d.join(ev)
	case KindMove:
		return d.move(ev)
	case KindSwitchRoom:
		return d.switchRoom(ev)
	case KindLeave:
		return d.leave(ev)
	default:
		// Unrecognized kinds are ignored so older servers tolerate newer
		// clients.
		slog.DebugContext(ctx, "ignoring unknown event kind", "kind", ev.Kind, "actor", ev.Actor)
		return nil, nil
	}
}

func (d *Dispatcher) join(ev *Event) (*Result, error) {
	roomId := ev.String("room_id")
	if roomId == "" {
		roomId = game.DefaultRoomId
	}

	err := d.world.AddPlayer(ev.Actor, roomId, 0, 0)
	if errors.Is(err, game.ErrRoomFull) || errors.Is(err, game.ErrRoomNotFound) {
		// The actor must learn it was not admitted.
		return &Result{
			Actor: &Response{Type: TypeJoinRejected, RoomId: roomId, Reason: err.Error()},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	snap, err := d.world.RoomSnapshot(roomId)
	if err != nil {
		return nil, fmt.Errorf("join: snapshotting %q: %w", roomId, err)
	}

	return &Result{
		Actor: &Response{Type: TypeJoinAccepted, YourId: ev.Actor, Players: snap},
		Rooms: []RoomUpdate{{RoomId: roomId, Msg: &Response{Type: TypeRoomState, Players: snap}}},
	}, nil
}

func (d *Dispatcher) move(ev *Event) (*Result, error) {
	x, okX := ev.Number("x")
	y, okY := ev.Number("y")
	if !okX || !okY {
		// Missing coordinates are treated as an ignorable message rather
		// than an error. Deliberate leniency: clients in mid-upgrade or
		// with minor bugs should not be punished per message.
		return nil, nil
	}

	if err := d.world.MovePlayer(ev.Actor, x, y); err != nil {
		// With join-before-read enforced by the session layer this only
		// fires when a client moves after an explicit leave, or the index
		// is corrupt.
		return nil, fmt.Errorf("move: %w", err)
	}

	roomId, ok := d.world.PlayerRoom(ev.Actor)
	if !ok {
		return nil, fmt.Errorf("move: %w", game.ErrPlayerNotFound)
	}
	snap, err := d.world.RoomSnapshot(roomId)
	if err != nil {
		return nil, fmt.Errorf("move: snapshotting %q: %w", roomId, err)
	}

	return &Result{
		Rooms: []RoomUpdate{{RoomId: roomId, Msg: &Response{Type: TypeRoomState, Players: snap}}},
	}, nil
}

func (d *Dispatcher) switchRoom(ev *Event) (*Result, error) {
	roomId := ev.String("room_id")
	if roomId == "" {
		return nil, nil
	}

	origin, switched, err := d.world.SwitchPlayerRoom(ev.Actor, roomId)
	if errors.Is(err, game.ErrRoomFull) {
		// The player stays in the origin room; the next room state they
		// receive still shows them there.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("switch room: %w", err)
	}
	if !switched {
		return nil, nil
	}

	result := &Result{}

	if snap, err := d.world.RoomSnapshot(roomId); err == nil {
		result.Actor = &Response{Type: TypeRoomSwitchAccepted, RoomId: roomId, Players: snap}
		result.Rooms = append(result.Rooms, RoomUpdate{RoomId: roomId, Msg: &Response{Type: TypeRoomState, Players: snap}})
	}
	if snap, err := d.world.RoomSnapshot(origin); err == nil {
		result.Rooms = append(result.Rooms, RoomUpdate{RoomId: origin, Msg: &Response{Type: TypeRoomState, Players: snap}})
	}

	return result, nil
}

func (d *Dispatcher) leave(ev *Event) (*Result, error) {
	// RemovePlayer reports the room the player occupied; it is not
	// retrievable after the mutation.
	origin, err := d.world.RemovePlayer(ev.Actor)
	if err != nil {
		return nil, fmt.Errorf("leave: %w", err)
	}

	snap, err := d.world.RoomSnapshot(origin)
	if err != nil {
		// The origin room disappearing between removal and snapshot only
		// happens for pruned dynamic rooms; nobody is left to notify.
		return nil, nil
	}

	return &Result{
		Rooms: []RoomUpdate{{RoomId: origin, Msg: &Response{Type: TypeRoomState, Players: snap}}},
	}, nil
}
