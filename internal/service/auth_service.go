// Package service contains the credential lifecycle logic: signup, email
// verification, login, and the password reset cycle. It owns no transport
// concerns and keeps no state between calls; all durable state lives in
// the account store and the only synchronization primitive it relies on
// is the store's conditional single-row write.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/queue"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// tokenWriteAttempts bounds regeneration when a token write lands on an
// occupied unique index. More than one retry should never happen with
// 256-bit tokens.
const tokenWriteAttempts = 3

// AccountStore is the persistence surface the service needs. It is
// implemented by repository.AccountRepo; tests substitute an in-memory
// fake. The two Consume operations must be atomic compare-and-swap
// writes: they clear the token only if it still matches, and report
// repository.ErrNotFound when another request consumed it first.
type AccountStore interface {
	Create(ctx context.Context, email, passwordHash, displayName, verifyToken string, verifyExp time.Time) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	GetByID(ctx context.Context, id uint64) (model.Account, error)
	GetByVerificationToken(ctx context.Context, token string) (model.Account, error)
	GetByResetToken(ctx context.Context, token string) (model.Account, error)
	SetVerificationToken(ctx context.Context, id uint64, token string, exp time.Time) error
	ConsumeVerificationToken(ctx context.Context, token string) error
	SetResetToken(ctx context.Context, id uint64, token string, exp time.Time) error
	ConsumeResetToken(ctx context.Context, token, newPasswordHash string) error
}

// MailPublisher hands email requests to the dispatch pipeline. Publishing
// is fire-and-forget: the service logs failures and never lets them fail
// the operation that requested the mail.
type MailPublisher interface {
	PublishEmailRequested(ctx context.Context, event queue.EmailRequestedEvent) error
}

// AccountInfo is the public slice of an account returned to callers.
// It never carries hashes or tokens.
type AccountInfo struct {
	ID            uint64
	Email         string
	DisplayName   string
	Role          string
	EmailVerified bool
}

// LoginResult bundles the bearer token with the account it belongs to.
type LoginResult struct {
	Access  utils.AccessToken
	Account AccountInfo
}

// AuthService orchestrates the account credential lifecycle.
type AuthService struct {
	cfg   config.Config
	store AccountStore
	mail  MailPublisher
	now   func() time.Time
}

func NewAuthService(cfg config.Config, store AccountStore, mail MailPublisher) *AuthService {
	return &AuthService{cfg: cfg, store: store, mail: mail, now: func() time.Time { return time.Now().UTC() }}
}

// Signup registers a new unverified account and requests a verification
// email. A duplicate email yields ErrEmailExists; if the existing account
// is still unverified, a fresh verification token is issued and re-mailed
// first so the original owner can complete signup, then the conflict is
// still reported.
func (s *AuthService) Signup(ctx context.Context, email, password, displayName string) (AccountInfo, error) {
	email = normalizeEmail(email)
	if err := utils.ValidatePasswordStrength(password); err != nil {
		return AccountInfo{}, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return AccountInfo{}, err
	}

	exp := s.now().Add(time.Duration(s.cfg.VerifyTTLHours) * time.Hour)
	var (
		id    uint64
		token string
	)
	for attempt := 0; attempt < tokenWriteAttempts; attempt++ {
		token, err = utils.NewOpaqueToken()
		if err != nil {
			return AccountInfo{}, err
		}
		id, err = s.store.Create(ctx, email, hash, displayName, token, exp)
		if !errors.Is(err, repository.ErrTokenCollision) {
			break
		}
	}
	if errors.Is(err, repository.ErrEmailExists) {
		s.reissueVerificationIfUnverified(ctx, email)
		return AccountInfo{}, ErrEmailExists
	}
	if err != nil {
		return AccountInfo{}, err
	}

	s.requestEmail(ctx, queue.EmailPurposeVerify, email, displayName, token)
	return AccountInfo{ID: id, Email: email, DisplayName: displayName, Role: model.RoleUser, EmailVerified: false}, nil
}

// VerifyEmail consumes a verification token, marking the account's email
// as proven. The consuming write re-checks the token, so a second call
// with the same token fails with ErrInvalidToken instead of applying
// twice. Verification is terminal: nothing ever flips the flag back.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	acc, err := s.store.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if acc.VerificationExpiresAt != nil && s.now().After(*acc.VerificationExpiresAt) {
		return ErrTokenExpired
	}
	if err := s.store.ConsumeVerificationToken(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race: someone consumed it between read and write.
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

// ResendVerification rotates the verification token of an unverified
// account and re-mails it. The outcome is identical whether the email is
// unknown, already verified, or pending, so the endpoint reveals nothing
// about which emails are registered.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if acc.EmailVerified {
		return nil
	}
	return s.rotateVerificationToken(ctx, acc)
}

// Login authenticates an email/password pair and issues a bearer token.
// Unknown email and wrong password are reported identically; a correct
// password on an unverified account gets the distinct ErrEmailNotVerified,
// which is safe to reveal because the caller already proved they hold the
// password.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = normalizeEmail(email)
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if !utils.VerifyPassword(acc.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !acc.EmailVerified {
		return LoginResult{}, ErrEmailNotVerified
	}
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, acc.ID, acc.Email, acc.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Access: access,
		Account: AccountInfo{
			ID: acc.ID, Email: acc.Email, DisplayName: acc.DisplayName,
			Role: acc.Role, EmailVerified: acc.EmailVerified,
		},
	}, nil
}

// ForgotPassword starts the reset cycle. It always reports success so the
// caller cannot tell whether the email is registered. A reset token is
// only issued for verified accounts: resetting a password through a
// mailbox whose ownership was never proven would hand the account to
// whoever controls the address. Unverified accounts are left untouched —
// re-sending verification mail from here would make the two cases
// distinguishable by their side effects (the resend endpoint exists for
// that).
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if !acc.EmailVerified {
		return nil
	}

	exp := s.now().Add(time.Duration(s.cfg.ResetTTLMin) * time.Minute)
	token, err := s.writeTokenRetrying(func(token string) error {
		// Overwrites any prior outstanding reset token, invalidating it.
		return s.store.SetResetToken(ctx, acc.ID, token, exp)
	})
	if err != nil {
		return err
	}
	s.requestEmail(ctx, queue.EmailPurposeReset, acc.Email, acc.DisplayName, token)
	return nil
}

// ResetPassword consumes a reset token and installs a new password hash in
// the same conditional write. The policy check runs before anything is
// written: a weak replacement leaves the old password fully intact. The
// caller is not logged in afterwards; a fresh Login is required.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidToken
	}
	acc, err := s.store.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if acc.ResetExpiresAt != nil && s.now().After(*acc.ResetExpiresAt) {
		return ErrTokenExpired
	}
	if err := utils.ValidatePasswordStrength(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.store.ConsumeResetToken(ctx, token, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

// Account returns the public fields of an account by id, used by the
// authenticated profile endpoint.
func (s *AuthService) Account(ctx context.Context, id uint64) (AccountInfo, error) {
	acc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return AccountInfo{}, err
	}
	return AccountInfo{
		ID: acc.ID, Email: acc.Email, DisplayName: acc.DisplayName,
		Role: acc.Role, EmailVerified: acc.EmailVerified,
	}, nil
}

// reissueVerificationIfUnverified refreshes the verification token when a
// signup collides with an existing unverified account. Failures here are
// logged only; the signup still reports the conflict.
func (s *AuthService) reissueVerificationIfUnverified(ctx context.Context, email string) {
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil || acc.EmailVerified {
		return
	}
	if err := s.rotateVerificationToken(ctx, acc); err != nil {
		log.Printf("auth: reissue verification for account %d failed: %v", acc.ID, err)
	}
}

func (s *AuthService) rotateVerificationToken(ctx context.Context, acc model.Account) error {
	exp := s.now().Add(time.Duration(s.cfg.VerifyTTLHours) * time.Hour)
	token, err := s.writeTokenRetrying(func(token string) error {
		return s.store.SetVerificationToken(ctx, acc.ID, token, exp)
	})
	if err != nil {
		// The account may have been verified in the meantime; that is fine.
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	s.requestEmail(ctx, queue.EmailPurposeVerify, acc.Email, acc.DisplayName, token)
	return nil
}

// writeTokenRetrying generates an opaque token and applies the given store
// write, regenerating on a unique-index collision instead of ever assuming
// token uniqueness.
func (s *AuthService) writeTokenRetrying(write func(token string) error) (string, error) {
	var lastErr error
	for attempt := 0; attempt < tokenWriteAttempts; attempt++ {
		token, err := utils.NewOpaqueToken()
		if err != nil {
			return "", err
		}
		if err := write(token); err != nil {
			lastErr = err
			if errors.Is(err, repository.ErrTokenCollision) {
				continue
			}
			return "", err
		}
		return token, nil
	}
	return "", lastErr
}

// requestEmail publishes a mail request and deliberately swallows any
// publish error: delivery problems must not fail signup or reset flows.
func (s *AuthService) requestEmail(ctx context.Context, purpose, recipient, displayName, token string) {
	ev := queue.EmailRequestedEvent{
		Purpose:     purpose,
		Recipient:   recipient,
		DisplayName: displayName,
		Token:       token,
		RequestedAt: s.now().Format(time.RFC3339),
	}
	if err := s.mail.PublishEmailRequested(ctx, ev); err != nil {
		log.Printf("auth: publish %s email for %s failed: %v", purpose, recipient, err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
