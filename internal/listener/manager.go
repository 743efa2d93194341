package listener

import (
	"context"
	"log/slog"

	"github.com/pixil98/go-presence/internal/session"
)

type ConnectionManager struct {
	sm *session.Manager
}

func NewConnectionManager(sm *session.Manager) *ConnectionManager {
	return &ConnectionManager{
		sm: sm,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn session.Conn, requestedRoom string) {
	if err := m.sm.RunSession(ctx, conn, requestedRoom); err != nil {
		slog.WarnContext(ctx, "session ended", "error", err)
	}
}
