package websocket

import (
	"sync"

	"go.uber.org/zap"

	"github.com/arialabs/aria/internal/domain"
)

// Hub tracks live voice sessions so profile updates can be pushed to them
// without a reconnect.
type Hub struct {
	mu       sync.RWMutex
	sessions map[*Session]struct{}
	log      *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		sessions: make(map[*Session]struct{}),
		log:      log,
	}
}

func (h *Hub) add(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
}

// NotifyPersona pushes a fresh persona to every live session of the user.
func (h *Hub) NotifyPersona(userID string, persona domain.Persona) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.sessions {
		if s.userID == userID {
			s.setPersona(persona)
		}
	}
}

// ActiveSessions returns the number of connected voice sessions.
func (h *Hub) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
