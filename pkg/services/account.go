package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"PetPal/models"
	"PetPal/pkg/repository"
	"PetPal/pkg/token"
	"PetPal/pkg/validation"
)

// Principal is the authenticated caller of a request or socket session.
type Principal struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
	User      *models.User
}

type AccountService struct {
	log    *slog.Logger
	users  repository.UserRepository
	issuer *token.Issuer
	store  token.Store
}

func NewAccountService(log *slog.Logger, users repository.UserRepository, issuer *token.Issuer, store token.Store) *AccountService {
	return &AccountService{log: log, users: users, issuer: issuer, store: store}
}

// Authenticate verifies a raw bearer token and loads its subject. Every
// failure is an *AuthError.
func (s *AccountService) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	claims, err := s.issuer.Parse(raw)
	if err != nil {
		if errors.Is(err, token.ErrMissing) {
			return nil, unauthenticated("missing token")
		}
		return nil, unauthenticated("invalid or expired token")
	}

	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.log.Error("auth - authenticate - revocation lookup failed", "error", err)
		return nil, unauthenticated("unable to verify token")
	}
	if revoked {
		return nil, unauthenticated("token has been revoked")
	}

	userID, _ := claims.UserID()
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthenticated("user no longer exists")
		}
		s.log.Error("auth - authenticate - user lookup failed", "user_id", userID, "error", err)
		return nil, unauthenticated("unable to verify token")
	}

	p := &Principal{UserID: user.ID, JTI: claims.ID, User: user}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

func (s *AccountService) Register(ctx context.Context, in validation.RegisterInput) (*models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if err := validation.Password(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u := &models.User{Email: in.Email, Role: models.Role(in.Role)}
	if err := u.SetPassword(in.Password); err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	if in.FirstName != "" || in.LastName != "" {
		u.Profile = &models.Profile{FirstName: in.FirstName, LastName: in.LastName}
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.log.Info("auth - register - user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login checks credentials and issues a signed token.
func (s *AccountService) Login(ctx context.Context, in validation.LoginInput) (string, *models.User, error) {
	if err := validation.Struct(&in); err != nil {
		return "", nil, err
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !u.CheckPassword(in.Password) {
		return "", nil, ErrInvalidCredentials
	}
	raw, _, err := s.issuer.Issue(u.ID, string(u.Role))
	if err != nil {
		return "", nil, err
	}
	return raw, u, nil
}

// Logout revokes the token until it would have expired.
func (s *AccountService) Logout(ctx context.Context, p *Principal) error {
	if p == nil || p.JTI == "" {
		return nil
	}
	return s.store.Revoke(ctx, p.JTI, p.ExpiresAt)
}

type ProfileInput struct {
	FirstName string `json:"firstName" conform:"trim" validate:"omitempty,max=80"`
	LastName  string `json:"lastName" conform:"trim" validate:"omitempty,max=80"`
	AvatarURL string `json:"avatarUrl" conform:"trim" validate:"omitempty,url,max=500"`
}

func (s *AccountService) Profile(ctx context.Context, userID uint) (*ParticipantView, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	v := NewParticipantView(u)
	return &v, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*ParticipantView, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	p := &models.Profile{UserID: userID, FirstName: in.FirstName, LastName: in.LastName, AvatarURL: in.AvatarURL}
	if err := s.users.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}
