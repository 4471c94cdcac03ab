package domain

import (
	"time"

	"github.com/google/uuid"
)

type CodePurpose string

const (
	PurposeRegistration CodePurpose = "registration"
	PurposeLogin        CodePurpose = "login"
)

// VerificationCode is the single usable email-code credential for an email
// address. Issuing a new code removes every earlier row for the same email,
// so at most one usable code exists per address at any time.
type VerificationCode struct {
	ID         uuid.UUID   `db:"id"`
	UserID     uuid.UUID   `db:"user_id"`
	Email      string      `db:"email"`
	CodeHash   string      `db:"code_hash"`
	Purpose    CodePurpose `db:"purpose"`
	Attempts   int         `db:"attempts"`
	Consumed   bool        `db:"consumed"`
	ConsumedAt *time.Time  `db:"consumed_at"`
	ExpiresAt  time.Time   `db:"expires_at"`
	CreatedAt  time.Time   `db:"created_at"`
}
