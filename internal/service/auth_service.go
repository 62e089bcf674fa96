package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Shresth17/SahayAI/internal/config"
	"github.com/Shresth17/SahayAI/internal/ids"
	"github.com/Shresth17/SahayAI/internal/models"
	"github.com/Shresth17/SahayAI/internal/repository"
	"github.com/Shresth17/SahayAI/internal/security"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
)

// UserStore is the persistence surface AuthService needs.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, profile models.Profile) (models.User, error)
}

type AuthService struct {
	users UserStore
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewAuthService(users UserStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		cfg:   cfg,
		log:   log,
	}
}

type SignupInput struct {
	Email    string
	Password string
	Profile  models.Profile
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (models.User, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		Name:         input.Profile.Name,
		Gender:       input.Profile.Gender,
		Phone:        input.Profile.Phone,
		Address:      input.Profile.Address,
		City:         input.Profile.City,
		State:        input.Profile.State,
		District:     input.Profile.District,
		Pincode:      input.Profile.Pincode,
		Role:         models.UserRoleCitizen,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

type LoginResult struct {
	Token string
	User  models.User
}

// Login verifies credentials and mints a session token whose claim is a
// snapshot of the user record. Unknown email and wrong password surface
// as distinct errors so the handlers can keep the 404/401 split.
func (s *AuthService) Login(ctx context.Context, email string, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, ErrUserNotFound
		}
		return LoginResult{}, err
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidPassword
	}

	token, err := security.IssueSessionToken(s.cfg.Security.JWTSecret, user, s.cfg.Security.SessionTTL)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, User: user}, nil
}

// UpdateProfile mutates the identity fields and reissues the session
// token, since the claim snapshot in the old one has gone stale.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, profile models.Profile) (LoginResult, error) {
	user, err := s.users.UpdateProfile(ctx, userID, profile)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, ErrUserNotFound
		}
		return LoginResult{}, err
	}

	token, err := security.IssueSessionToken(s.cfg.Security.JWTSecret, user, s.cfg.Security.SessionTTL)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, User: user}, nil
}

// VerifyToken validates a session token. Every failure collapses to a nil
// claim for the caller; the specific reason is only logged.
func (s *AuthService) VerifyToken(token string) *security.SessionClaims {
	claims, failure := security.VerifySessionToken(token, s.cfg.Security.JWTSecret)
	if failure != security.VerifyOK {
		s.log.Debug().
			Str("reason", failure.String()).
			Msg("session token rejected")
		return nil
	}
	return claims
}
