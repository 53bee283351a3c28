// Command seed fills a development database with owners, providers and a few
// conversations between them. Output credentials land in seed/summary.json.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/pkg/errors"

	"PetPal/models"
	"PetPal/pkg/config"
	"PetPal/pkg/database"
	"PetPal/pkg/events"
	"PetPal/pkg/logger"
	"PetPal/pkg/repository"
	"PetPal/pkg/services"
	"PetPal/pkg/token"
	"PetPal/pkg/validation"
)

const seedPassword = "petpal123"

type SeededUser struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type Summary struct {
	RandomSeed    int64        `json:"random_seed"`
	StartedAt     string       `json:"started_at"`
	EndedAt       string       `json:"ended_at"`
	Driver        string       `json:"driver"`
	Users         []SeededUser `json:"users"`
	Conversations []string     `json:"conversations"`
	Messages      int          `json:"messages"`
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func localPart(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, strings.ToLower(s))
}

func register(ctx context.Context, accounts *services.AccountService, faker *gofakeit.Faker, role models.Role) (*models.User, error) {
	for attempt := 0; attempt < 5; attempt++ {
		first, last := faker.FirstName(), faker.LastName()
		u, err := accounts.Register(ctx, validation.RegisterInput{
			Email:     fmt.Sprintf("%s.%s%d@petpal.test", localPart(first), localPart(last), faker.Number(1, 999)),
			Password:  seedPassword,
			Role:      string(role),
			FirstName: first,
			LastName:  last,
		})
		if errors.Is(err, services.ErrEmailTaken) {
			continue
		}
		return u, err
	}
	return nil, errors.New("could not find a free email")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if cfg.IsProduction() {
		fmt.Println("[warn] refusing to seed a production database")
		os.Exit(1)
	}
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: "text", Service: "petpal-seed", Env: cfg.AppEnv})
	ctx := context.Background()

	db, err := database.Open(ctx, database.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN, Attempts: 3})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}

	seed := int64(envInt("SEED_RANDOM", int(time.Now().UnixNano()%1_000_000)))
	faker := gofakeit.New(seed)
	owners, providers := envInt("SEED_OWNERS", 5), envInt("SEED_PROVIDERS", 3)
	perConversation := envInt("SEED_MESSAGES", 6)

	users := repository.NewUserRepo(db)
	accounts := services.NewAccountService(log, users, token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), nil)
	convs := services.NewConversationService(log, repository.NewConversationRepo(db), users, events.NopPublisher{}, nil)

	summary := Summary{RandomSeed: seed, StartedAt: time.Now().Format(time.RFC3339), Driver: cfg.DBDriver}
	var ownerIDs, providerIDs []uint
	for i := 0; i < owners+providers; i++ {
		role := models.RoleOwner
		if i >= owners {
			role = models.RoleProvider
		}
		u, err := register(ctx, accounts, faker, role)
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		if _, err := accounts.UpdateProfile(ctx, u.ID, services.ProfileInput{
			FirstName: u.Profile.FirstName,
			LastName:  u.Profile.LastName,
			AvatarURL: faker.ImageURL(256, 256),
		}); err != nil {
			log.Warn("seed - avatar - failed", "user_id", u.ID, "error", err)
		}
		if role == models.RoleOwner {
			ownerIDs = append(ownerIDs, u.ID)
		} else {
			providerIDs = append(providerIDs, u.ID)
		}
		summary.Users = append(summary.Users, SeededUser{ID: u.ID, Email: u.Email, Role: string(role), Name: u.DisplayName(), Password: seedPassword})
	}

	for _, owner := range ownerIDs {
		if len(providerIDs) == 0 {
			break
		}
		provider := providerIDs[faker.Number(0, len(providerIDs)-1)]
		conv, _, err := convs.FindOrCreateConversation(ctx, owner, provider)
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		summary.Conversations = append(summary.Conversations, conv.ID)
		for j := 0; j < perConversation; j++ {
			sender := owner
			if j%2 == 1 {
				sender = provider
			}
			if _, err := convs.CreateMessage(ctx, conv.ID, sender, faker.Sentence(faker.Number(3, 14))); err != nil {
				fmt.Println("error:", err)
				os.Exit(1)
			}
			summary.Messages++
		}
	}

	summary.EndedAt = time.Now().Format(time.RFC3339)
	out := filepath.Join("seed", "summary.json")
	if err := writeJSON(out, summary); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d users, %d conversations, %d messages -> %s\n", len(summary.Users), len(summary.Conversations), summary.Messages, out)
}
