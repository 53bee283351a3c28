package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

type fakeSession struct {
	id     string
	userID uint

	mu     sync.Mutex
	frames [][]byte
	full   bool
	closed bool
}

func newFakeSession(id string, userID uint) *fakeSession {
	return &fakeSession{id: id, userID: userID}
}

func (s *fakeSession) ID() string   { return s.id }
func (s *fakeSession) UserID() uint { return s.userID }
func (s *fakeSession) Send(p []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.full {
		return false
	}
	s.frames = append(s.frames, p)
	return true
}
func (s *fakeSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

type decodedFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (s *fakeSession) events() []decodedFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]decodedFrame, 0, len(s.frames))
	for _, raw := range s.frames {
		var f decodedFrame
		_ = json.Unmarshal(raw, &f)
		out = append(out, f)
	}
	return out
}

func (s *fakeSession) eventNames() []string {
	var names []string
	for _, f := range s.events() {
		names = append(names, f.Event)
	}
	return names
}

func TestHubJoinMovesBetweenRooms(t *testing.T) {
	h := NewHub(nil)
	s := newFakeSession("s1", 1)
	if err := h.Register(s); err != nil {
		t.Fatalf("register: %v", err)
	}

	if prev := h.Join(s, "room-a"); prev != "" {
		t.Fatalf("expected no previous room, got %q", prev)
	}
	if prev := h.Join(s, "room-b"); prev != "room-a" {
		t.Fatalf("expected previous room-a, got %q", prev)
	}
	if h.Members("room-a") != 0 || h.Members("room-b") != 1 {
		t.Fatalf("expected session only in room-b, a=%d b=%d", h.Members("room-a"), h.Members("room-b"))
	}
	if room, _ := h.RoomOf(s); room != "room-b" {
		t.Fatalf("expected room-b, got %q", room)
	}

	h.Unregister(s)
	if h.Members("room-b") != 0 || h.Sessions() != 0 {
		t.Fatalf("expected unregister to clear membership")
	}
	if _, ok := h.RoomOf(s); ok {
		t.Fatalf("expected no room after unregister")
	}
}

func TestHubBroadcastIsRoomScoped(t *testing.T) {
	h := NewHub(nil)
	a1, a2, b := newFakeSession("a1", 1), newFakeSession("a2", 2), newFakeSession("b", 3)
	for _, s := range []*fakeSession{a1, a2, b} {
		_ = h.Register(s)
	}
	h.Join(a1, "room-a")
	h.Join(a2, "room-a")
	h.Join(b, "room-b")

	if n := h.Broadcast("room-a", []byte(`{"event":"x"}`)); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	if len(a1.frames) != 1 || len(a2.frames) != 1 || len(b.frames) != 0 {
		t.Fatalf("unexpected fan-out a1=%d a2=%d b=%d", len(a1.frames), len(a2.frames), len(b.frames))
	}
}

func TestHubBroadcastSkipsFullQueues(t *testing.T) {
	h := NewHub(nil)
	slow, fast := newFakeSession("slow", 1), newFakeSession("fast", 2)
	slow.full = true
	_ = h.Register(slow)
	_ = h.Register(fast)
	h.Join(slow, "r")
	h.Join(fast, "r")

	if n := h.Broadcast("r", []byte(`{}`)); n != 1 {
		t.Fatalf("expected only the fast session to accept, got %d", n)
	}
}

func TestHubCloseClosesSessionsAndRefusesNew(t *testing.T) {
	h := NewHub(nil)
	s := newFakeSession("s", 1)
	_ = h.Register(s)
	h.Close()
	h.Close()

	if !s.closed {
		t.Fatalf("expected session closed")
	}
	if err := h.Register(newFakeSession("late", 2)); err != ErrHubClosed {
		t.Fatalf("expected ErrHubClosed, got %v", err)
	}
}

func TestHubConcurrentJoinLeaveBroadcast(t *testing.T) {
	h := NewHub(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := newFakeSession(fmt.Sprintf("s%d", i), uint(i))
			_ = h.Register(s)
			for j := 0; j < 20; j++ {
				h.Join(s, fmt.Sprintf("room-%d", j%3))
				h.Broadcast("room-0", []byte(`{}`))
			}
			h.Unregister(s)
		}(i)
	}
	wg.Wait()
	for j := 0; j < 3; j++ {
		if n := h.Members(fmt.Sprintf("room-%d", j)); n != 0 {
			t.Fatalf("expected empty room-%d, got %d", j, n)
		}
	}
}
