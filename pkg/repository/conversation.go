package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"PetPal/models"
)

type ConversationRepository interface {
	ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error)
	LastMessages(ctx context.Context, conversationIDs []string) (map[string]models.Message, error)
	FindByPairKey(ctx context.Context, key string) (*models.Conversation, error)
	CreateForPair(ctx context.Context, a, b uint) (*models.Conversation, error)
	GetForParticipant(ctx context.Context, conversationID string, userID uint) (*models.Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]models.Message, error)
	AppendMessage(ctx context.Context, conversationID string, senderID uint, content string) (*models.Message, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

// participantScope restricts a conversations query to rows userID takes part in.
func participantScope(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id AND cp.user_id = ?", userID)
	}
}

func (r *conversationRepo) ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var out []models.Conversation
	err := r.db.WithContext(ctx).
		Scopes(participantScope(userID)).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("users.id ASC") }).
		Preload("Participants.Profile").
		Order("conversations.updated_at DESC").
		Order("conversations.id ASC").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "list conversations")
	}
	return out, nil
}

// LastMessages returns the newest message of each conversation that has one.
// "Newest" uses the same (created_at, id) order as the history.
func (r *conversationRepo) LastMessages(ctx context.Context, conversationIDs []string) (map[string]models.Message, error) {
	out := make(map[string]models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender.Profile").
		Where("messages.conversation_id IN ?", conversationIDs).
		Where(`NOT EXISTS (SELECT 1 FROM messages newer
			WHERE newer.conversation_id = messages.conversation_id
			AND (newer.created_at > messages.created_at
				OR (newer.created_at = messages.created_at AND newer.id > messages.id)))`).
		Find(&msgs).Error
	if err != nil {
		return nil, errors.Wrap(err, "last messages")
	}
	for _, m := range msgs {
		out[m.ConversationID] = m
	}
	return out, nil
}

func (r *conversationRepo) FindByPairKey(ctx context.Context, key string) (*models.Conversation, error) {
	var c models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("users.id ASC") }).
		Preload("Participants.Profile").
		Where("participant_key = ?", key).
		First(&c).Error
	if err != nil {
		return nil, errors.Wrap(err, "find conversation by pair")
	}
	return &c, nil
}

// CreateForPair inserts the conversation and both participant rows in one
// transaction. A concurrent creator for the same pair makes this fail on the
// participant_key unique index.
func (r *conversationRepo) CreateForPair(ctx context.Context, a, b uint) (*models.Conversation, error) {
	c := models.Conversation{ParticipantKey: models.PairKey(a, b)}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&c).Error; err != nil {
			return err
		}
		rows := []models.ConversationParticipant{
			{ConversationID: c.ID, UserID: a},
			{ConversationID: c.ID, UserID: b},
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "create conversation")
	}
	return &c, nil
}

func (r *conversationRepo) GetForParticipant(ctx context.Context, conversationID string, userID uint) (*models.Conversation, error) {
	var c models.Conversation
	err := r.db.WithContext(ctx).
		Scopes(participantScope(userID)).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("users.id ASC") }).
		Preload("Participants.Profile").
		Where("conversations.id = ?", conversationID).
		First(&c).Error
	if err != nil {
		return nil, errors.Wrap(err, "get conversation")
	}
	return &c, nil
}

func (r *conversationRepo) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var out []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender.Profile").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	return out, nil
}

// AppendMessage checks participancy, inserts the message and bumps the
// conversation's updated_at to the message time, all in one transaction.
// A non-participant or unknown conversation yields gorm.ErrRecordNotFound.
func (r *conversationRepo) AppendMessage(ctx context.Context, conversationID string, senderID uint, content string) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Conversation
		if err := tx.Scopes(participantScope(senderID)).
			Select("conversations.id").
			Where("conversations.id = ?", conversationID).
			First(&c).Error; err != nil {
			return err
		}

		msg = models.Message{ConversationID: c.ID, SenderID: senderID, Content: content}
		if err := tx.Omit(clause.Associations).Create(&msg).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", c.ID).
			UpdateColumn("updated_at", msg.CreatedAt).Error; err != nil {
			return err
		}

		return tx.Preload("Profile").First(&msg.Sender, senderID).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "append message")
	}
	return &msg, nil
}
