package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixil98/go-presence/internal/events"
	"github.com/pixil98/go-presence/internal/game"
)

// Broker provides subject-based delivery between the registry and live
// connections.
type Broker interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
	Publish(subject string, data []byte) error
}

func sessionSubject(sessionId string) string {
	return fmt.Sprintf("session.%s", sessionId)
}

type liveSession struct {
	playerId string
	unsub    func()
}

// Registry maps live sessions to players and performs room-scoped
// delivery. It keeps no room→audience table of its own: broadcast
// audiences are derived from the world's membership at send time, so the
// two can never diverge.
type Registry struct {
	mu sync.RWMutex

	world  *game.World
	broker Broker

	sessions map[string]*liveSession // session id -> session
	players  map[string]string       // player id -> session id
}

func NewRegistry(world *game.World, broker Broker) *Registry {
	return &Registry{
		world:    world,
		broker:   broker,
		sessions: make(map[string]*liveSession),
		players:  make(map[string]string),
	}
}

// Register wires a connection's delivery callback onto the session's bus
// subject and records the session↔player pairing.
func (r *Registry) Register(sessionId, playerId string, deliver func(data []byte)) error {
	unsub, err := r.broker.Subscribe(sessionSubject(sessionId), deliver)
	if err != nil {
		return fmt.Errorf("subscribing session %q: %w", sessionId, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionId] = &liveSession{playerId: playerId, unsub: unsub}
	r.players[playerId] = sessionId
	return nil
}

// Unregister drops the session and its subscription. Unknown sessions are
// a no-op.
func (r *Registry) Unregister(sessionId string) {
	r.mu.Lock()
	s, ok := r.sessions[sessionId]
	if ok {
		delete(r.sessions, sessionId)
		if r.players[s.playerId] == sessionId {
			delete(r.players, s.playerId)
		}
	}
	r.mu.Unlock()

	if ok && s.unsub != nil {
		s.unsub()
	}
}

// Send delivers a message to one session. Unknown sessions are a no-op;
// the session may have departed between decision and send.
func (r *Registry) Send(sessionId string, msg *events.Response) {
	r.mu.RLock()
	_, ok := r.sessions[sessionId]
	r.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Warn("marshalling response", "session", sessionId, "error", err)
		return
	}
	if err := r.broker.Publish(sessionSubject(sessionId), data); err != nil {
		slog.Warn("publishing to session", "session", sessionId, "error", err)
	}
}

// Broadcast delivers a message to every registered session whose player
// is currently in the room. The member list is snapshotted up front, so a
// session departing mid-broadcast is either included once or not at all.
func (r *Registry) Broadcast(roomId string, msg *events.Response) {
	members, err := r.world.RoomMembers(roomId)
	if err != nil {
		// Room already gone; nobody to notify.
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Warn("marshalling broadcast", "room", roomId, "error", err)
		return
	}

	r.mu.RLock()
	targets := make([]string, 0, len(members))
	for _, playerId := range members {
		if sessionId, ok := r.players[playerId]; ok {
			targets = append(targets, sessionId)
		}
	}
	r.mu.RUnlock()

	for _, sessionId := range targets {
		if err := r.broker.Publish(sessionSubject(sessionId), data); err != nil {
			slog.Warn("publishing broadcast", "room", roomId, "session", sessionId, "error", err)
		}
	}
}

// Deliver routes one dispatch result: the actor response to the acting
// session, then each room update to that room's current audience.
func (r *Registry) Deliver(sessionId string, res *events.Result) {
	if res == nil {
		return
	}
	if res.Actor != nil {
		r.Send(sessionId, res.Actor)
	}
	for _, ru := range res.Rooms {
		r.Broadcast(ru.RoomId, ru.Msg)
	}
}

// SessionCount returns the number of registered sessions.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// SessionFor returns the session id for a player, if any.
func (r *Registry) SessionFor(playerId string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionId, ok := r.players[playerId]
	return sessionId, ok
}
