package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"PetPal/models"
	"PetPal/pkg/database"
	"PetPal/pkg/logger"
	"PetPal/pkg/repository"
	"PetPal/pkg/services"

	"gorm.io/gorm"
)

type gatewayFixture struct {
	db  *gorm.DB
	hub *Hub
	gw  *Gateway
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	db, err := database.Open(context.Background(), database.Options{Driver: "sqlite", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	log := logger.Discard()
	convs := services.NewConversationService(log, repository.NewConversationRepo(db), repository.NewUserRepo(db), nil, nil)
	hub := NewHub(nil)
	return &gatewayFixture{db: db, hub: hub, gw: NewGateway(log, hub, convs, nil)}
}

func (f *gatewayFixture) user(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, Role: role, PasswordHash: "x"}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *gatewayFixture) conversation(t *testing.T, a, b uint) string {
	t.Helper()
	c := models.Conversation{ParticipantKey: models.PairKey(a, b)}
	if err := f.db.Omit("Participants").Create(&c).Error; err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	rows := []models.ConversationParticipant{{ConversationID: c.ID, UserID: a}, {ConversationID: c.ID, UserID: b}}
	if err := f.db.Create(&rows).Error; err != nil {
		t.Fatalf("create participants: %v", err)
	}
	return c.ID
}

func (f *gatewayFixture) session(t *testing.T, id string, userID uint) *fakeSession {
	t.Helper()
	s := newFakeSession(id, userID)
	if err := f.hub.Register(s); err != nil {
		t.Fatalf("register: %v", err)
	}
	return s
}

func dispatch(f *gatewayFixture, s Session, event string, data any) {
	raw, _ := json.Marshal(map[string]any{"event": event, "data": data})
	f.gw.Dispatch(context.Background(), s, raw)
}

func lastError(t *testing.T, s *fakeSession) ErrorData {
	t.Helper()
	evs := s.events()
	if len(evs) == 0 || evs[len(evs)-1].Event != EventError {
		t.Fatalf("expected an error frame, got %v", s.eventNames())
	}
	var e ErrorData
	_ = json.Unmarshal(evs[len(evs)-1].Data, &e)
	return e
}

func TestHelloScenario(t *testing.T) {
	f := newGatewayFixture(t)
	a := f.user(t, "a@example.com", models.RoleOwner)
	b := f.user(t, "b@example.com", models.RoleProvider)
	conv := f.conversation(t, a.ID, b.ID)

	sa := f.session(t, "sa", a.ID)
	sb := f.session(t, "sb", b.ID)

	dispatch(f, sa, EventJoinRoom, conv)
	dispatch(f, sb, EventJoinRoom, map[string]string{"conversationId": conv})
	if got := strings.Join(sa.eventNames(), ","); got != EventJoinedRoom {
		t.Fatalf("expected joined_room for A, got %s", got)
	}

	dispatch(f, sa, EventSendMessage, map[string]string{"conversationId": conv, "content": "Hello"})

	if got := strings.Join(sa.eventNames(), ","); got != "joined_room,receive_message,message_sent" {
		t.Fatalf("unexpected frames for A: %s", got)
	}
	if got := strings.Join(sb.eventNames(), ","); got != "joined_room,receive_message" {
		t.Fatalf("unexpected frames for B: %s", got)
	}

	var recv struct {
		Message        services.MessageView `json:"message"`
		ConversationID string               `json:"conversationId"`
	}
	_ = json.Unmarshal(sb.events()[1].Data, &recv)
	if recv.ConversationID != conv || recv.Message.Content != "Hello" || recv.Message.SenderID != a.ID {
		t.Fatalf("unexpected receive_message payload: %+v", recv)
	}

	var ack MessageSentData
	_ = json.Unmarshal(sa.events()[2].Data, &ack)
	if ack.MessageID != recv.Message.ID || ack.ConversationID != conv {
		t.Fatalf("expected ack for the broadcast message, got %+v", ack)
	}

	var msgs []models.Message
	f.db.Where("conversation_id = ?", conv).Find(&msgs)
	if len(msgs) != 1 || msgs[0].Content != "Hello" {
		t.Fatalf("expected one persisted Hello, got %+v", msgs)
	}
}

func TestJoinRoomRejectsNonParticipant(t *testing.T) {
	f := newGatewayFixture(t)
	a := f.user(t, "a@example.com", models.RoleOwner)
	b := f.user(t, "b@example.com", models.RoleProvider)
	u := f.user(t, "u@example.com", models.RoleOwner)
	conv := f.conversation(t, a.ID, b.ID)

	su := f.session(t, "su", u.ID)
	dispatch(f, su, EventJoinRoom, conv)

	e := lastError(t, su)
	if e.Event != EventJoinRoom || e.Message != services.ErrNotFoundOrForbidden.Error() {
		t.Fatalf("unexpected error frame: %+v", e)
	}
	if _, ok := f.hub.RoomOf(su); ok {
		t.Fatalf("expected outsider not to join")
	}

	dispatch(f, su, EventJoinRoom, "does-not-exist")
	if e2 := lastError(t, su); e2.Message != e.Message {
		t.Fatalf("expected identical message for missing conversation, got %q", e2.Message)
	}
}

func TestJoinRoomLeavesPreviousRoom(t *testing.T) {
	f := newGatewayFixture(t)
	a := f.user(t, "a@example.com", models.RoleOwner)
	b := f.user(t, "b@example.com", models.RoleProvider)
	c := f.user(t, "c@example.com", models.RoleProvider)
	first := f.conversation(t, a.ID, b.ID)
	second := f.conversation(t, a.ID, c.ID)

	sa := f.session(t, "sa", a.ID)
	dispatch(f, sa, EventJoinRoom, first)
	dispatch(f, sa, EventJoinRoom, second)

	if f.hub.Members(first) != 0 || f.hub.Members(second) != 1 {
		t.Fatalf("expected session only in the second room")
	}
}

func TestSendMessageWithoutJoinStillBroadcasts(t *testing.T) {
	f := newGatewayFixture(t)
	a := f.user(t, "a@example.com", models.RoleOwner)
	b := f.user(t, "b@example.com", models.RoleProvider)
	conv := f.conversation(t, a.ID, b.ID)

	sa := f.session(t, "sa", a.ID)
	sb := f.session(t, "sb", b.ID)
	dispatch(f, sb, EventJoinRoom, conv)

	dispatch(f, sa, EventSendMessage, map[string]string{"conversationId": conv, "content": "anyone there?"})

	if got := strings.Join(sa.eventNames(), ","); got != EventMessageSent {
		t.Fatalf("expected only message_sent for non-member sender, got %s", got)
	}
	if got := strings.Join(sb.eventNames(), ","); got != "joined_room,receive_message" {
		t.Fatalf("expected room member to receive, got %s", got)
	}
}

func TestSendMessageValidationNeverPersists(t *testing.T) {
	f := newGatewayFixture(t)
	a := f.user(t, "a@example.com", models.RoleOwner)
	b := f.user(t, "b@example.com", models.RoleProvider)
	conv := f.conversation(t, a.ID, b.ID)
	sa := f.session(t, "sa", a.ID)
	sb := f.session(t, "sb", b.ID)
	dispatch(f, sb, EventJoinRoom, conv)

	payloads := []any{
		map[string]any{"conversationId": conv, "content": ""},
		map[string]any{"conversationId": conv, "content": "    "},
		map[string]any{"conversationId": conv, "content": strings.Repeat("x", 1001)},
		map[string]any{"conversationId": conv, "content": 42},
		map[string]any{"content": "hi"},
		"just a string",
	}
	for _, p := range payloads {
		dispatch(f, sa, EventSendMessage, p)
		if e := lastError(t, sa); e.Event != EventSendMessage {
			t.Fatalf("expected scoped send_message error, got %+v", e)
		}
	}

	var n int64
	f.db.Model(&models.Message{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected nothing persisted, got %d", n)
	}
	if got := strings.Join(sb.eventNames(), ","); got != EventJoinedRoom {
		t.Fatalf("expected no broadcast, got %s", got)
	}
}

func TestSendMessageByNonParticipant(t *testing.T) {
	f := newGatewayFixture(t)
	a := f.user(t, "a@example.com", models.RoleOwner)
	b := f.user(t, "b@example.com", models.RoleProvider)
	u := f.user(t, "u@example.com", models.RoleOwner)
	conv := f.conversation(t, a.ID, b.ID)
	sb := f.session(t, "sb", b.ID)
	dispatch(f, sb, EventJoinRoom, conv)

	su := f.session(t, "su", u.ID)
	dispatch(f, su, EventSendMessage, map[string]string{"conversationId": conv, "content": "let me in"})

	if e := lastError(t, su); e.Message != services.ErrNotFoundOrForbidden.Error() {
		t.Fatalf("unexpected error: %+v", e)
	}
	if got := strings.Join(sb.eventNames(), ","); got != EventJoinedRoom {
		t.Fatalf("expected no broadcast, got %s", got)
	}
}

func TestMalformedAndUnknownFrames(t *testing.T) {
	f := newGatewayFixture(t)
	s := f.session(t, "s", 1)

	f.gw.Dispatch(context.Background(), s, []byte("not json"))
	if e := lastError(t, s); e.Event != "" {
		t.Fatalf("expected unscoped error for malformed frame, got %+v", e)
	}

	dispatch(f, s, "typing", nil)
	if e := lastError(t, s); e.Event != "typing" || e.Message != "unknown event" {
		t.Fatalf("unexpected error: %+v", e)
	}
}

type failingService struct{}

func (failingService) GetConversationWithMessages(context.Context, string, uint) (*services.ConversationDetail, error) {
	return nil, errors.New("connection refused")
}

func (failingService) CreateMessage(context.Context, string, uint, string) (*services.MessageView, error) {
	return nil, errors.New("connection refused")
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	hub := NewHub(nil)
	gw := NewGateway(logger.Discard(), hub, failingService{}, nil)
	s := newFakeSession("s", 1)
	_ = hub.Register(s)

	raw, _ := json.Marshal(map[string]any{"event": EventSendMessage, "data": map[string]string{"conversationId": "c", "content": "hi"}})
	gw.Dispatch(context.Background(), s, raw)

	if e := lastError(t, s); e.Message != "internal error" {
		t.Fatalf("expected generic message, got %q", e.Message)
	}
}

func TestSendMessageCompletesAfterCallerCancels(t *testing.T) {
	f := newGatewayFixture(t)
	a := f.user(t, "a@example.com", models.RoleOwner)
	b := f.user(t, "b@example.com", models.RoleProvider)
	conv := f.conversation(t, a.ID, b.ID)
	sb := f.session(t, "sb", b.ID)
	dispatch(f, sb, EventJoinRoom, conv)

	sa := f.session(t, "sa", a.ID)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	raw, _ := json.Marshal(map[string]any{"event": EventSendMessage, "data": map[string]string{"conversationId": conv, "content": "bye"}})
	f.gw.Dispatch(ctx, sa, raw)

	var n int64
	f.db.Model(&models.Message{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected message persisted despite cancelled caller, got %d", n)
	}
	if got := strings.Join(sb.eventNames(), ","); got != "joined_room,receive_message" {
		t.Fatalf("expected broadcast despite cancelled caller, got %s", got)
	}
}
