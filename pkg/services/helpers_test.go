package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"PetPal/models"
	"PetPal/pkg/cache"
	"PetPal/pkg/database"
	"PetPal/pkg/events"
	"PetPal/pkg/logger"
	"PetPal/pkg/repository"
	"PetPal/pkg/token"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.MessageCreated
	err    error
}

func (p *recordingPublisher) PublishMessageCreated(_ context.Context, ev events.MessageCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	db       *gorm.DB
	convs    *ConversationService
	accounts *AccountService
	issuer   *token.Issuer
	pub      *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
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
	users := repository.NewUserRepo(db)
	pub := &recordingPublisher{}
	issuer := token.NewIssuer("test-secret", time.Hour)
	return &fixture{
		db:       db,
		convs:    NewConversationService(log, repository.NewConversationRepo(db), users, pub, nil),
		accounts: NewAccountService(log, users, issuer, token.NewMemoryStore(cache.New[string, struct{}](0, 0))),
		issuer:   issuer,
		pub:      pub,
	}
}

func (f *fixture) user(t *testing.T, email string, role models.Role, profile *models.Profile) *models.User {
	t.Helper()
	u := &models.User{Email: email, Role: role, Profile: profile}
	if err := u.SetPassword("walkies42"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func (f *fixture) conversation(t *testing.T, a, b uint) *ConversationDetail {
	t.Helper()
	c, _, err := f.convs.FindOrCreateConversation(context.Background(), a, b)
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	return c
}

func (f *fixture) countMessages(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&models.Message{}).Count(&n).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	return n
}

func mustNotFound(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, ErrNotFoundOrForbidden) {
		t.Fatalf("expected ErrNotFoundOrForbidden, got %v", err)
	}
}
