package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pixil98/go-presence/internal/events"
	"github.com/pixil98/go-presence/internal/game"
)

// inboundFrame is the decoded shape of one client message.
type inboundFrame struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Manager drives the lifecycle of individual sessions. Every join and
// leave, including the ones synthesized at accept and disconnect, flows
// through the same dispatcher path as explicit client messages.
type Manager struct {
	dispatcher *events.Dispatcher
	registry   *Registry
}

func NewManager(dispatcher *events.Dispatcher, registry *Registry) *Manager {
	return &Manager{
		dispatcher: dispatcher,
		registry:   registry,
	}
}

// RunSession owns one connection from accept to close: register on the
// bus, synthesize a join into the requested room, pump messages, and on
// any exit synthesize a leave and unregister. Processing is strictly
// sequential per session; only the transport pumps run concurrently.
func (m *Manager) RunSession(ctx context.Context, conn Conn, requestedRoom string) error {
	sessionId := uuid.NewString()
	// One player per session; the boundary assigns both identities.
	playerId := sessionId

	msgs := make(chan []byte, 64)
	err := m.registry.Register(sessionId, playerId, func(data []byte) {
		select {
		case msgs <- data:
		default:
			// A slow client drops frames rather than stalling delivery to
			// the rest of the room. The next room state supersedes
			// anything missed.
		}
	})
	if err != nil {
		return fmt.Errorf("registering session: %w", err)
	}
	defer m.registry.Unregister(sessionId)

	joined, err := m.join(ctx, conn, sessionId, playerId, requestedRoom)
	if err != nil {
		return err
	}
	if !joined {
		// Rejection was already written; nothing to clean up.
		return nil
	}
	defer m.leave(ctx, sessionId, playerId)

	done := make(chan struct{})
	defer close(done)

	inputChan := make(chan []byte)
	inputErrChan := make(chan error, 1)
	go func() {
		for {
			data, err := conn.ReadMessage()
			if err != nil {
				inputErrChan <- err
				close(inputChan)
				return
			}
			select {
			case inputChan <- data:
			case <-done:
				// Session ended on its own; stop pumping.
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case data := <-msgs:
			if err := conn.WriteMessage(data); err != nil {
				return fmt.Errorf("writing to session %q: %w", sessionId, err)
			}

		case data, ok := <-inputChan:
			if !ok {
				// Connection lost; the deferred leave handles cleanup.
				err := <-inputErrChan
				slog.DebugContext(ctx, "session disconnected", "session", sessionId, "error", err)
				return nil
			}

			ev, ok := m.decode(ctx, sessionId, playerId, data)
			if !ok {
				continue
			}

			res, err := m.dispatcher.Dispatch(ctx, ev)
			if err != nil {
				// A failed event never takes the session or the process
				// down with it.
				slog.WarnContext(ctx, "event failed", "session", sessionId, "kind", ev.Kind, "error", err)
				continue
			}
			m.registry.Deliver(sessionId, res)

			if ev.Kind == events.KindLeave {
				// Explicit leave ends the session; the deferred leave
				// becomes a no-op through idempotent removal.
				return nil
			}
		}
	}
}

// join synthesizes the accept-time join event. Returns false when the
// world did not admit the player. A rejection is written straight to the
// connection: the session loop that drains the bus never starts for a
// session that was not admitted.
func (m *Manager) join(ctx context.Context, conn Conn, sessionId, playerId, requestedRoom string) (bool, error) {
	payload := map[string]any{}
	if requestedRoom != "" {
		payload["room_id"] = requestedRoom
	}

	res, err := m.dispatcher.Dispatch(ctx, &events.Event{
		Kind:    events.KindJoin,
		Actor:   playerId,
		Payload: payload,
	})
	if err != nil {
		return false, fmt.Errorf("joining session %q: %w", sessionId, err)
	}

	if res != nil && res.Actor != nil && res.Actor.Type == events.TypeJoinRejected {
		data, err := json.Marshal(res.Actor)
		if err == nil {
			_ = conn.WriteMessage(data)
		}
		return false, nil
	}

	m.registry.Deliver(sessionId, res)
	return true, nil
}

// leave synthesizes the disconnect-time leave event. Removal is
// idempotent, so racing an explicit leave is harmless.
func (m *Manager) leave(ctx context.Context, sessionId, playerId string) {
	res, err := m.dispatcher.Dispatch(ctx, &events.Event{
		Kind:  events.KindLeave,
		Actor: playerId,
	})
	if err != nil {
		if !errors.Is(err, game.ErrPlayerNotFound) {
			slog.WarnContext(ctx, "leave failed", "session", sessionId, "error", err)
		}
		return
	}
	m.registry.Deliver(sessionId, res)
}

func (m *Manager) decode(ctx context.Context, sessionId, playerId string, data []byte) (*events.Event, bool) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		slog.DebugContext(ctx, "ignoring malformed frame", "session", sessionId, "error", err)
		return nil, false
	}
	return &events.Event{
		Kind:    frame.Type,
		Actor:   playerId,
		Payload: frame.Payload,
	}, true
}
