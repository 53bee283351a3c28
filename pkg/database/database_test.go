package database

import (
	"context"
	"testing"

	"PetPal/models"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := Open(context.Background(), Options{Driver: "sqlite", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, m := range []any{&models.User{}, &models.Profile{}, &models.Conversation{}, &models.ConversationParticipant{}, &models.Message{}} {
		if !db.Migrator().HasTable(m) {
			t.Errorf("expected table for %T", m)
		}
	}
	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
