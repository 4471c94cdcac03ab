package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	Username         string         `db:"username" json:"username"`
	Email            string         `db:"email" json:"email"`
	PasswordHash     sql.NullString `db:"password_hash" json:"-"`
	Verified         bool           `db:"verified" json:"verified"`
	ChessComUsername sql.NullString `db:"chess_com_username" json:"chess_com_username"`
	EloRating        int            `db:"elo_rating" json:"elo_rating"`
	GemsBalance      float64        `db:"gems_balance" json:"gems_balance"`
	Diamonds         float64        `db:"diamonds" json:"diamonds"`
	RTDBalance       float64        `db:"rtd_balance" json:"rtd_balance"`
	KnowledgePoints  int            `db:"knowledge_points" json:"knowledge_points"`
	ReferralCode     string         `db:"referral_code" json:"referral_code"`
	ReferredBy       *uuid.UUID     `db:"referred_by" json:"referred_by,omitempty"`
	Banned           bool           `db:"banned" json:"banned"`
	BanReason        sql.NullString `db:"ban_reason" json:"-"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	LastLoginAt *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}
