package services

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"PetPal/models"
	"PetPal/pkg/events"
	"PetPal/pkg/logger"
	"PetPal/pkg/metrics"
	"PetPal/pkg/repository"
	utils "PetPal/pkg/utills"
	"PetPal/pkg/validation"
)

// ConversationService is the single place where conversation access is
// authorized and messages are persisted. REST and socket transports both
// call it.
type ConversationService struct {
	log     *slog.Logger
	convs   repository.ConversationRepository
	users   repository.UserRepository
	events  events.Publisher
	metrics *metrics.Metrics
}

func NewConversationService(log *slog.Logger, convs repository.ConversationRepository, users repository.UserRepository, pub events.Publisher, m *metrics.Metrics) *ConversationService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &ConversationService{log: log, convs: convs, users: users, events: pub, metrics: m}
}

func (s *ConversationService) ListUserConversations(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	convs, err := s.convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	last, err := s.convs.LastMessages(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		sum := ConversationSummary{
			ID:           c.ID,
			Participants: participantViews(c.Participants),
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		}
		if m, ok := last[c.ID]; ok {
			v := newMessageView(&m)
			sum.LastMessage = &v
		}
		out = append(out, sum)
	}
	return out, nil
}

// FindOrCreateConversation returns the conversation between a and b, creating
// it when absent. The bool reports whether this call created it.
func (s *ConversationService) FindOrCreateConversation(ctx context.Context, a, b uint) (*ConversationDetail, bool, error) {
	if a == 0 || b == 0 {
		return nil, false, &ValidationError{Field: "userId", Message: "userId is required"}
	}
	if a == b {
		return nil, false, &ValidationError{Field: "userId", Message: "cannot start a conversation with yourself"}
	}
	for _, id := range []uint{a, b} {
		if _, err := s.users.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, ErrUserNotFound
			}
			return nil, false, err
		}
	}

	key := models.PairKey(a, b)
	conv, err := s.convs.FindByPairKey(ctx, key)
	if err == nil {
		detail, err := s.detail(ctx, conv)
		return detail, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if _, err := s.convs.CreateForPair(ctx, a, b); err != nil {
		// Lost the race on participant_key: the winner's row is the answer.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.FromContext(ctx).Debug("conversation - find or create - create failed, re-reading", "pair", key, "error", err)
		}
		if conv, rerr := s.convs.FindByPairKey(ctx, key); rerr == nil {
			detail, derr := s.detail(ctx, conv)
			return detail, false, derr
		}
		return nil, false, err
	}

	conv, err = s.convs.FindByPairKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	s.metrics.ConversationCreated()
	logger.FromContext(ctx).Info("conversation - find or create - created", "conversation_id", conv.ID, "pair", key)
	detail, err := s.detail(ctx, conv)
	return detail, true, err
}

func (s *ConversationService) GetConversationWithMessages(ctx context.Context, conversationID string, requesterID uint) (*ConversationDetail, error) {
	if conversationID == "" {
		return nil, &ValidationError{Field: "conversationId", Message: "conversationId is required"}
	}
	conv, err := s.convs.GetForParticipant(ctx, conversationID, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return s.detail(ctx, conv)
}

// CreateMessage trims and validates content, then persists it if sender
// participates in the conversation. The message.created event is best effort.
func (s *ConversationService) CreateMessage(ctx context.Context, conversationID string, senderID uint, content string) (*MessageView, error) {
	if conversationID == "" {
		return nil, &ValidationError{Field: "conversationId", Message: "conversationId is required"}
	}
	trimmed, err := validation.Content(content)
	if err != nil {
		return nil, err
	}

	msg, err := s.convs.AppendMessage(ctx, conversationID, senderID, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, err
	}

	if err := s.events.PublishMessageCreated(ctx, events.MessageCreated{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		CreatedAt:      msg.CreatedAt,
	}); err != nil {
		s.metrics.EventPublishFailed()
		s.log.Warn("conversation - create message - publish event failed", "message_id", msg.ID, "error", err)
	}

	logger.FromContext(ctx).Debug("conversation - create message - stored", "message_id", msg.ID, "conversation_id", msg.ConversationID, "preview", utils.Preview(msg.Content, 40))
	v := newMessageView(msg)
	return &v, nil
}

func (s *ConversationService) detail(ctx context.Context, conv *models.Conversation) (*ConversationDetail, error) {
	msgs, err := s.convs.Messages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, newMessageView(&msgs[i]))
	}
	return &ConversationDetail{
		ID:           conv.ID,
		Participants: participantViews(conv.Participants),
		Messages:     views,
		CreatedAt:    conv.CreatedAt,
		UpdatedAt:    conv.UpdatedAt,
	}, nil
}
