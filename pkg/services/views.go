package services

import (
	"time"

	"PetPal/models"
)

type ParticipantView struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

type MessageView struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversationId"`
	SenderID       uint            `json:"senderId"`
	Sender         ParticipantView `json:"sender"`
	Content        string          `json:"content"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type ConversationSummary struct {
	ID           string            `json:"id"`
	Participants []ParticipantView `json:"participants"`
	LastMessage  *MessageView      `json:"lastMessage"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

type ConversationDetail struct {
	ID           string            `json:"id"`
	Participants []ParticipantView `json:"participants"`
	Messages     []MessageView     `json:"messages"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func NewParticipantView(u *models.User) ParticipantView {
	v := ParticipantView{
		ID:          u.ID,
		Email:       u.Email,
		Role:        string(u.Role),
		DisplayName: u.DisplayName(),
	}
	if u.Profile != nil {
		v.FirstName = u.Profile.FirstName
		v.LastName = u.Profile.LastName
		v.AvatarURL = u.Profile.AvatarURL
	}
	return v
}

func newMessageView(m *models.Message) MessageView {
	return MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Sender:         NewParticipantView(&m.Sender),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func participantViews(users []models.User) []ParticipantView {
	out := make([]ParticipantView, 0, len(users))
	for i := range users {
		out = append(out, NewParticipantView(&users[i]))
	}
	return out
}
