package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/rolodex-app/rolodex/internal/platform/httpx"
	"github.com/rolodex-app/rolodex/internal/platform/imghost"
)

// ConfirmationEnqueuer hands confirmation emails off to the background queue.
type ConfirmationEnqueuer interface {
	EnqueueSendConfirmation(ctx context.Context, to, username, token string) error
}

// Service wraps signup, login, and token lifecycle rules.
type Service struct {
	repo     Repository
	codec    *TokenCodec
	mail     ConfirmationEnqueuer
	logger   *slog.Logger
	gravatar func(ctx context.Context, email string) (string, error)
}

// NewService constructs a new Service.
func NewService(repo Repository, codec *TokenCodec, mail ConfirmationEnqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		codec:    codec,
		mail:     mail,
		logger:   logger,
		gravatar: imghost.LookupGravatar,
	}
}

// HashPassword hashes a plain-text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Signup registers a new account and queues a confirmation email. The
// Gravatar probe is best effort: on failure the avatar is simply left unset.
func (s *Service) Signup(ctx context.Context, email, username, password string) (*User, error) {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: account already exists", httpx.ErrDuplicate)
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	if avatar, err := s.gravatar(ctx, email); err != nil {
		s.logger.Warn("gravatar lookup failed", slog.String("email", email), slog.Any("error", err))
	} else {
		user.AvatarURL = &avatar
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, httpx.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account already exists", httpx.ErrDuplicate)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.ID = id

	s.sendConfirmation(ctx, user.Email, user.Username)
	return &user, nil
}

// Login verifies credentials and issues a fresh token pair. The refresh
// token is persisted so it can be matched on rotation.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", httpx.ErrUnauthorized)
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid email or password", httpx.ErrUnauthorized)
	}
	if !user.Confirmed {
		return nil, fmt.Errorf("%w: email not confirmed", httpx.ErrForbidden)
	}
	return s.issuePair(ctx, user)
}

// Refresh validates a refresh token against the stored copy and rotates the
// pair. A token that no longer matches invalidates the stored one.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	email, err := s.codec.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown subject", httpx.ErrUnauthorized)
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		if err := s.repo.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			s.logger.Warn("clear refresh token", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%w: refresh token mismatch", httpx.ErrUnauthorized)
	}
	return s.issuePair(ctx, user)
}

// ConfirmEmail validates an email-verification token and marks the account
// confirmed. Returns true when the account was already confirmed.
func (s *Service) ConfirmEmail(ctx context.Context, token string) (bool, error) {
	email, err := s.codec.ParseEmailToken(token)
	if err != nil {
		return false, fmt.Errorf("%w: verification error", httpx.ErrValidation)
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("%w: verification error", httpx.ErrValidation)
	}
	if user.Confirmed {
		return true, nil
	}
	if err := s.repo.ConfirmEmail(ctx, email); err != nil {
		return false, fmt.Errorf("confirm email: %w", err)
	}
	return false, nil
}

// ResendConfirmation queues another confirmation email when the account
// exists and is not yet confirmed. It reveals nothing to the caller.
func (s *Service) ResendConfirmation(ctx context.Context, email string) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil || user.Confirmed {
		return
	}
	s.sendConfirmation(ctx, user.Email, user.Username)
}

// CurrentUser resolves the account behind an access token. This is the
// single authorization gate used by all protected routes.
func (s *Service) CurrentUser(ctx context.Context, token string) (*User, error) {
	email, err := s.codec.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown subject", httpx.ErrUnauthorized)
	}
	return user, nil
}

// UpdateAvatar stores the hosted avatar URL on the account.
func (s *Service) UpdateAvatar(ctx context.Context, user *User, avatarURL string) error {
	if err := s.repo.UpdateAvatar(ctx, user.ID, avatarURL); err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	user.AvatarURL = &avatarURL
	return nil
}

func (s *Service) issuePair(ctx context.Context, user *User) (*TokenPair, error) {
	access, err := s.codec.CreateAccessToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}
	refresh, err := s.codec.CreateRefreshToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}
	if err := s.repo.UpdateRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// sendConfirmation mints an email token and enqueues the send. Failures are
// logged and swallowed so signup never blocks on the mail path.
func (s *Service) sendConfirmation(ctx context.Context, email, username string) {
	if s.mail == nil {
		return
	}
	token, err := s.codec.CreateEmailToken(email)
	if err != nil {
		s.logger.Warn("mint email token", slog.Any("error", err))
		return
	}
	if err := s.mail.EnqueueSendConfirmation(ctx, email, username, token); err != nil {
		s.logger.Warn("enqueue confirmation email", slog.String("email", email), slog.Any("error", err))
	}
}
