package service

import (
	"context"
	"time"

	"github.com/chess2earn/backend/internal/config"
	"github.com/chess2earn/backend/internal/domain"
	"github.com/chess2earn/backend/internal/repository"
	"github.com/chess2earn/backend/pkg/auth"
	"github.com/chess2earn/backend/pkg/hash"
	"github.com/chess2earn/backend/pkg/otp"

	"github.com/google/uuid"
)

type Services struct {
	Users Users
}

// CodeNotifier delivers a verification code to an email address. The
// production implementation enqueues an email task; tests substitute a mock.
type CodeNotifier interface {
	SendCodeEmail(ctx context.Context, email, username, code string, purpose domain.CodePurpose) error
}

type Deps struct {
	Config        *config.Config
	CodeHasher    hash.CodeHasher
	TokenManager  auth.TokenManager
	CodeGenerator otp.Generator
	Notifier      CodeNotifier
	Repos         *repository.Repositories
}

func NewServices(deps Deps) *Services {
	return &Services{
		Users: newUserService(
			deps.Repos.Users,
			deps.Repos.VerificationCodes,
			deps.CodeHasher,
			deps.TokenManager,
			deps.CodeGenerator,
			deps.Notifier,
			deps.Config.Auth,
		),
	}
}

type RegistrationResult struct {
	UserID        uuid.UUID
	Email         string
	Username      string
	CodeExpiresAt time.Time
}

type AuthResult struct {
	Token string
	User  *domain.User
}

type ResendResult struct {
	Email         string
	CodeExpiresAt time.Time
}

type LoginResult struct {
	UserID        uuid.UUID
	Email         string
	CodeExpiresAt time.Time
}

type RefreshResult struct {
	Token     string
	ExpiresAt time.Time
}

type Users interface {
	Register(ctx context.Context, email, username string) (*RegistrationResult, error)
	Verify(ctx context.Context, email, code string) (*AuthResult, error)
	ResendCode(ctx context.Context, email string) (*ResendResult, error)
	Login(ctx context.Context, email string) (*LoginResult, error)
	Refresh(ctx context.Context, accessToken string) (*RefreshResult, error)
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
