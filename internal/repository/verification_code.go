package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chess2earn/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type verificationCodeRepository struct {
	db *sqlx.DB
}

func newVerificationCodeRepository(db *sqlx.DB) *verificationCodeRepository {
	return &verificationCodeRepository{
		db: db,
	}
}

func (r *verificationCodeRepository) Replace(ctx context.Context, code *domain.VerificationCode) error {
	const op = "repository.verificationCode.Replace"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx failed: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const deleteQuery = `
	DELETE FROM verification_code WHERE email = ?;
	`
	if _, err := tx.ExecContext(ctx, deleteQuery, code.Email); err != nil {
		return fmt.Errorf("%s: delete stale codes failed: %w", op, err)
	}

	const insertQuery = `
	INSERT INTO verification_code (id, user_id, email, code_hash, purpose, expires_at)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), :email, :code_hash, :purpose, :expires_at)
	`
	res, err := tx.NamedExecContext(ctx, insertQuery, code)
	if err != nil {
		return fmt.Errorf("%s: insert verification code failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit failed: %w", op, err)
	}

	return nil
}

func (r *verificationCodeRepository) GetLatestByEmail(ctx context.Context, email string) (*domain.VerificationCode, error) {
	const op = "repository.verificationCode.GetLatestByEmail"

	const query = `
	SELECT id, user_id, email, code_hash, purpose, attempts, consumed, consumed_at, expires_at, created_at
	FROM verification_code
	WHERE email = ? AND consumed = FALSE
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`

	var code domain.VerificationCode
	if err := r.db.GetContext(ctx, &code, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select verification code failed: %w", op, err)
	}

	return &code, nil
}

func (r *verificationCodeRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	const op = "repository.verificationCode.IncrementAttempts"

	const query = `
	UPDATE verification_code SET attempts = attempts + 1 WHERE id = uuid_to_bin(?)
	`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: update attempts failed: %w", op, err)
	}

	return nil
}

func (r *verificationCodeRepository) MarkConsumed(ctx context.Context, id uuid.UUID, at time.Time) error {
	const op = "repository.verificationCode.MarkConsumed"

	const query = `
	UPDATE verification_code
	SET consumed = TRUE, consumed_at = ?
	WHERE id = uuid_to_bin(?) AND consumed = FALSE
	`

	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("%s: update verification code failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *verificationCodeRepository) CreatedSince(ctx context.Context, email string, since time.Time) (bool, error) {
	const op = "repository.verificationCode.CreatedSince"

	const query = `
	SELECT COUNT(*) FROM verification_code WHERE email = ? AND created_at > ?
	`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, email, since); err != nil {
		return false, fmt.Errorf("%s: count recent codes failed: %w", op, err)
	}

	return count > 0, nil
}
