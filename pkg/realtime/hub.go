package realtime

import (
	"sync"

	"github.com/pkg/errors"

	"PetPal/pkg/metrics"
)

var ErrHubClosed = errors.New("hub closed")

// Session is one authenticated socket connection as the hub sees it.
type Session interface {
	ID() string
	UserID() uint
	// Send queues a frame without blocking. It reports false when the frame
	// was dropped because the session is closed or its queue is full.
	Send(payload []byte) bool
	Close()
}

// Hub is the room table. A session is in at most one room at a time.
type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]Session
	rooms      map[string]map[string]Session
	membership map[string]string
	closed     bool

	metrics *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		sessions:   make(map[string]Session),
		rooms:      make(map[string]map[string]Session),
		membership: make(map[string]string),
		metrics:    m,
	}
}

func (h *Hub) Register(s Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	h.sessions[s.ID()] = s
	h.metrics.SessionOpened()
	return nil
}

// Unregister drops the session and its room membership.
func (h *Hub) Unregister(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.ID()]; !ok {
		return
	}
	h.leaveLocked(s.ID())
	delete(h.sessions, s.ID())
	h.metrics.SessionClosed()
}

// Join moves the session into room, leaving whatever room it was in.
// It returns the previous room, or "" if there was none.
func (h *Hub) Join(s Session, room string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.leaveLocked(s.ID())
	members := h.rooms[room]
	if members == nil {
		members = make(map[string]Session)
		h.rooms[room] = members
	}
	members[s.ID()] = s
	h.membership[s.ID()] = room
	return prev
}

func (h *Hub) Leave(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(s.ID())
}

// leaveLocked requires h.mu held for writing.
func (h *Hub) leaveLocked(sessionID string) string {
	room, ok := h.membership[sessionID]
	if !ok {
		return ""
	}
	delete(h.membership, sessionID)
	if members := h.rooms[room]; members != nil {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	return room
}

// Broadcast queues payload for every session in room and returns how many
// sessions accepted it.
func (h *Hub) Broadcast(room string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, s := range h.rooms[room] {
		if s.Send(payload) {
			delivered++
		} else {
			h.metrics.FrameDropped()
		}
	}
	return delivered
}

func (h *Hub) RoomOf(s Session) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.membership[s.ID()]
	return room, ok
}

func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close closes every session and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	sessions := make([]Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
