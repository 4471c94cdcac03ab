package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chess2earn/backend/internal/db"
	"github.com/chess2earn/backend/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `
	id, username, email, password_hash, verified, chess_com_username, elo_rating,
	gems_balance, diamonds, rtd_balance, knowledge_points, referral_code,
	referred_by, banned, ban_reason, created_at, last_login_at`

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const op = "repository.user.Create"

	const query = `
	INSERT INTO user (id, username, email, referral_code)
	VALUES (uuid_to_bin(?), ?, ?, ?);
	`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.ReferralCode,
	)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert user failed: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected failed: %w", op, err)
	}

	if rowsAffected == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *userRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT` + userColumns + ` FROM user WHERE id = uuid_to_bin(?);`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by id failed: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT` + userColumns + ` FROM user WHERE email = ?;`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by email failed: %w", err)
	}

	return &user, nil
}

// GetByEmailOrUsername returns the user owning either value. An email owner
// wins over a username owner when two different users match.
func (r *userRepository) GetByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error) {
	query := `
	SELECT` + userColumns + `
	FROM user
	WHERE email = ? OR username = ?
	ORDER BY email = ? DESC
	LIMIT 1;
	`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email, username, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by email or username failed: %w", err)
	}

	return &user, nil
}

func (r *userRepository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	const query = `
	UPDATE user SET username = ? WHERE id = uuid_to_bin(?);
	`

	_, err := r.db.ExecContext(ctx, query, username, id)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("update username by id failed: %w", err)
	}

	return nil
}

// MarkVerified is monotonic: it never clears the flag.
func (r *userRepository) MarkVerified(ctx context.Context, id uuid.UUID, loginAt time.Time) error {
	const query = `
	UPDATE user SET verified = TRUE, last_login_at = ? WHERE id = uuid_to_bin(?);
	`

	_, err := r.db.ExecContext(ctx, query, loginAt, id)
	if err != nil {
		return fmt.Errorf("mark user verified failed: %w", err)
	}

	return nil
}
