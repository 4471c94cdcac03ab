package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chess2earn/backend/internal/config"
	"github.com/chess2earn/backend/internal/domain"
	"github.com/chess2earn/backend/internal/repository"
	"github.com/chess2earn/backend/pkg/auth"
	"github.com/chess2earn/backend/pkg/hash"
	"github.com/chess2earn/backend/pkg/otp"

	"github.com/google/uuid"
	"github.com/xlzd/gotp"
)

const (
	referralCodePrefix       = "CHESS-"
	referralCodeSuffixLength = 6
	referralCodeMaxRetries   = 5
)

type userService struct {
	userRepository repository.Users
	codeRepository repository.VerificationCodes
	codeHasher     hash.CodeHasher
	tokenManager   auth.TokenManager
	codeGenerator  otp.Generator
	notifier       CodeNotifier
	authConfig     config.AuthConfig
}

func newUserService(
	userRepository repository.Users,
	codeRepository repository.VerificationCodes,
	codeHasher hash.CodeHasher,
	tokenManager auth.TokenManager,
	codeGenerator otp.Generator,
	notifier CodeNotifier,
	authConfig config.AuthConfig,
) *userService {
	return &userService{
		userRepository: userRepository,
		codeRepository: codeRepository,
		codeHasher:     codeHasher,
		tokenManager:   tokenManager,
		codeGenerator:  codeGenerator,
		notifier:       notifier,
		authConfig:     authConfig,
	}
}

// Register creates or reuses a user record and sends a registration code.
// A verified owner of the email or username blocks registration; an
// unverified owner of the email is reused so an abandoned registration can
// be completed with a different username.
func (s *userService) Register(ctx context.Context, email, username string) (*RegistrationResult, error) {
	existing, err := s.userRepository.GetByEmailOrUsername(ctx, email, username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user by email or username failed: %w", err)
	}

	var userID uuid.UUID

	switch {
	case existing != nil && existing.Verified:
		if existing.Email == email {
			return nil, ErrEmailExists
		}
		return nil, ErrUsernameTaken

	case existing != nil && existing.Email != email:
		// Unverified user owns the username under a different email.
		return nil, ErrUsernameTaken

	case existing != nil:
		userID = existing.ID
		if existing.Username != username {
			if err := s.userRepository.UpdateUsername(ctx, userID, username); err != nil {
				if errors.Is(err, domain.ErrDuplicateEntry) {
					return nil, ErrUsernameTaken
				}
				return nil, fmt.Errorf("update username failed: %w", err)
			}
		}

	default:
		userID, err = s.createUser(ctx, email, username)
		if err != nil {
			return nil, err
		}
	}

	expiresAt, err := s.issueCode(ctx, email, username, userID, domain.PurposeRegistration)
	if err != nil {
		return nil, err
	}

	return &RegistrationResult{
		UserID:        userID,
		Email:         email,
		Username:      username,
		CodeExpiresAt: expiresAt,
	}, nil
}

// Verify consumes the latest code for the email. Checks run in a fixed
// order: presence, the code comparison itself, then expiry and the attempt
// cap. A mismatch reads as an invalid code regardless of the record's state
// and increments the attempt counter so the cap is enforceable.
func (s *userService) Verify(ctx context.Context, email, code string) (*AuthResult, error) {
	record, err := s.codeRepository.GetLatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("get verification code failed: %w", err)
	}

	now := time.Now()

	if !s.codeHasher.Equal(record.CodeHash, code) {
		if err := s.codeRepository.IncrementAttempts(ctx, record.ID); err != nil {
			return nil, fmt.Errorf("increment attempts failed: %w", err)
		}
		return nil, ErrInvalidCode
	}

	if now.After(record.ExpiresAt) {
		return nil, ErrCodeExpired
	}

	if record.Attempts >= s.authConfig.VerificationMaxAttempts {
		return nil, ErrTooManyAttempts
	}

	if err := s.codeRepository.MarkConsumed(ctx, record.ID, now); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			// Lost the race against a concurrent consume of the same code.
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("mark code consumed failed: %w", err)
	}

	if err := s.userRepository.MarkVerified(ctx, record.UserID, now); err != nil {
		return nil, fmt.Errorf("mark user verified failed: %w", err)
	}

	user, err := s.userRepository.GetOneByID(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("get verified user failed: %w", err)
	}

	token, _, err := s.tokenManager.NewJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate access token failed: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

// ResendCode reissues a code for an existing user, at most once per resend
// interval per email. Unlike Login, it also serves unverified users stuck
// mid-registration.
func (s *userService) ResendCode(ctx context.Context, email string) (*ResendResult, error) {
	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	recent, err := s.codeRepository.CreatedSince(ctx, email, time.Now().Add(-s.authConfig.ResendInterval))
	if err != nil {
		return nil, fmt.Errorf("check recent codes failed: %w", err)
	}
	if recent {
		return nil, ErrResendRateLimited
	}

	expiresAt, err := s.issueCode(ctx, email, user.Username, user.ID, domain.PurposeRegistration)
	if err != nil {
		return nil, err
	}

	return &ResendResult{
		Email:         email,
		CodeExpiresAt: expiresAt,
	}, nil
}

// Login issues a fresh login code for a verified user, invalidating any
// code left over from registration. The resend interval deliberately does
// not apply here.
func (s *userService) Login(ctx context.Context, email string) (*LoginResult, error) {
	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	if !user.Verified {
		return nil, ErrEmailNotVerified
	}

	expiresAt, err := s.issueCode(ctx, email, user.Username, user.ID, domain.PurposeLogin)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		UserID:        user.ID,
		Email:         email,
		CodeExpiresAt: expiresAt,
	}, nil
}

// Refresh issues a new token from an existing one. The old token may be
// expired, but its signature must still check out.
func (s *userService) Refresh(ctx context.Context, accessToken string) (*RefreshResult, error) {
	subject, err := s.tokenManager.ParseIgnoringExpiry(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if _, err := s.userRepository.GetOneByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id failed: %w", err)
	}

	token, ttl, err := s.tokenManager.NewJWT(userID)
	if err != nil {
		return nil, fmt.Errorf("generate access token failed: %w", err)
	}

	return &RefreshResult{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (s *userService) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepository.GetOneByID(ctx, id)
}

func (s *userService) createUser(ctx context.Context, email, username string) (uuid.UUID, error) {
	for i := 0; i < referralCodeMaxRetries; i++ {
		userID, err := uuid.NewV7()
		if err != nil {
			return uuid.Nil, fmt.Errorf("generate user id failed: %w", err)
		}

		newUser := &domain.User{
			ID:           userID,
			Username:     username,
			Email:        email,
			ReferralCode: newReferralCode(),
		}

		err = s.userRepository.Create(ctx, newUser)
		if err == nil {
			return userID, nil
		}
		if !errors.Is(err, domain.ErrDuplicateEntry) {
			return uuid.Nil, fmt.Errorf("create user failed: %w", err)
		}
		// Email and username were checked above, so a duplicate here is
		// almost certainly a referral-code collision; regenerate and retry.
	}

	return uuid.Nil, fmt.Errorf("create user failed: %w", domain.ErrDuplicateEntry)
}

// newReferralCode builds a CHESS-XXXXXX code. RandomSecret base32-encodes
// the requested byte count, so its output is longer than the suffix; only
// the first six characters are kept.
func newReferralCode() string {
	secret := gotp.RandomSecret(referralCodeSuffixLength)

	return referralCodePrefix + secret[:referralCodeSuffixLength]
}

// issueCode writes the new code before dispatching the email, and fails the
// whole operation when dispatch fails, so a delivered code always exists in
// the store.
func (s *userService) issueCode(ctx context.Context, email, username string, userID uuid.UUID, purpose domain.CodePurpose) (time.Time, error) {
	code, err := s.codeGenerator.RandomCode(s.authConfig.VerificationCodeLength)
	if err != nil {
		return time.Time{}, fmt.Errorf("generate verification code failed: %w", err)
	}

	codeID, err := uuid.NewV7()
	if err != nil {
		return time.Time{}, fmt.Errorf("generate code id failed: %w", err)
	}

	expiresAt := time.Now().Add(s.authConfig.VerificationCodeTTL)

	record := &domain.VerificationCode{
		ID:        codeID,
		UserID:    userID,
		Email:     email,
		CodeHash:  s.codeHasher.Hash(code),
		Purpose:   purpose,
		ExpiresAt: expiresAt,
	}

	if err := s.codeRepository.Replace(ctx, record); err != nil {
		return time.Time{}, fmt.Errorf("store verification code failed: %w", err)
	}

	if err := s.notifier.SendCodeEmail(ctx, email, username, code, purpose); err != nil {
		return time.Time{}, fmt.Errorf("dispatch verification email failed: %w", err)
	}

	return expiresAt, nil
}
