package repository

import (
	"context"
	"time"

	"github.com/chess2earn/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Users             Users
	VerificationCodes VerificationCodes
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:             newUserRepository(db),
		VerificationCodes: newVerificationCodeRepository(db),
	}
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error
	MarkVerified(ctx context.Context, id uuid.UUID, loginAt time.Time) error
}

type VerificationCodes interface {
	// Replace removes every code for the email and inserts the new one in a
	// single transaction, so only the latest code survives a concurrent issue.
	Replace(ctx context.Context, code *domain.VerificationCode) error
	// GetLatestByEmail returns the newest unconsumed code for the email,
	// ordered by created_at then id so ties resolve deterministically.
	GetLatestByEmail(ctx context.Context, email string) (*domain.VerificationCode, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	// MarkConsumed flips the consumed flag; returns domain.ErrNoRowsAffected
	// when the code was already consumed by a concurrent request.
	MarkConsumed(ctx context.Context, id uuid.UUID, at time.Time) error
	// CreatedSince reports whether any code was issued for the email after
	// the given instant, consumed or not.
	CreatedSince(ctx context.Context, email string, since time.Time) (bool, error)
}
