package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/database"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
)

// SessionRepository provides data access for visitor sessions.
type SessionRepository interface {
	// Upsert creates the session row for session.SessionID, or refreshes
	// email and last_active_at when it already exists. The account link is
	// not modified by Upsert; use LinkAccount for that.
	Upsert(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	// Touch refreshes last_active_at; returns ErrNotFound when the session
	// does not exist.
	Touch(ctx context.Context, sessionID string) error
	// LinkAccount upserts the session row and forcibly sets its account id,
	// overwriting any previous link. This is the single path by which an
	// anonymous session becomes attributed to an account.
	LinkAccount(ctx context.Context, sessionID, email string, accountID uuid.UUID) error
	// Delete removes the session row. Deleting an absent session is not an
	// error; dependent analyses and reports are not cascade-deleted.
	Delete(ctx context.Context, sessionID string) error
}

type sessionRepository struct{}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository() SessionRepository {
	return &sessionRepository{}
}

var _ SessionRepository = (*sessionRepository)(nil)

func (r *sessionRepository) Upsert(ctx context.Context, session *models.Session) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	now := time.Now()

	query := `
		INSERT INTO sessions (session_id, email, created_at, last_active_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (session_id) DO UPDATE
		SET email = EXCLUDED.email,
		    last_active_at = EXCLUDED.last_active_at
		RETURNING id, account_id, created_at, last_active_at`

	err := scope.Conn.QueryRow(ctx, query,
		session.SessionID,
		session.Email,
		now,
	).Scan(&session.ID, &session.AccountID, &session.CreatedAt, &session.LastActiveAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	query := `
		SELECT id, session_id, account_id, email, created_at, last_active_at
		FROM sessions
		WHERE session_id = $1`

	var s models.Session
	err := scope.Conn.QueryRow(ctx, query, sessionID).Scan(
		&s.ID,
		&s.SessionID,
		&s.AccountID,
		&s.Email,
		&s.CreatedAt,
		&s.LastActiveAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Session not found
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &s, nil
}

func (r *sessionRepository) Touch(ctx context.Context, sessionID string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `UPDATE sessions SET last_active_at = now() WHERE session_id = $1`

	result, err := scope.Conn.Exec(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *sessionRepository) LinkAccount(ctx context.Context, sessionID, email string, accountID uuid.UUID) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO sessions (session_id, account_id, email, created_at, last_active_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (session_id) DO UPDATE
		SET account_id = EXCLUDED.account_id,
		    email = EXCLUDED.email,
		    last_active_at = EXCLUDED.last_active_at`

	_, err := scope.Conn.Exec(ctx, query, sessionID, accountID, email)
	if err != nil {
		return fmt.Errorf("failed to link session to account: %w", err)
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `DELETE FROM sessions WHERE session_id = $1`

	if _, err := scope.Conn.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
