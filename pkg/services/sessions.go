package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/logging"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
)

// SessionService defines the interface for session lifecycle operations.
type SessionService interface {
	// Save creates or refreshes the session row for the given session id.
	Save(ctx context.Context, sessionID, email string) (*models.Session, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	// Touch refreshes last_active_at on an existing session.
	Touch(ctx context.Context, sessionID string) error
	// LinkAccount attributes the session to an account, overwriting any
	// previous link. The session row is created if absent.
	LinkAccount(ctx context.Context, sessionID, email string, accountID uuid.UUID) error
	Delete(ctx context.Context, sessionID string) error
}

type sessionService struct {
	sessionRepo repositories.SessionRepository
	logger      *zap.Logger
}

// NewSessionService creates a new session service with dependencies.
func NewSessionService(sessionRepo repositories.SessionRepository, logger *zap.Logger) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

func (s *sessionService) Save(ctx context.Context, sessionID, email string) (*models.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	session := &models.Session{
		SessionID: sessionID,
		Email:     email,
	}
	if err := s.sessionRepo.Upsert(ctx, session); err != nil {
		s.logger.Error("Failed to save session",
			zap.String("session_id", logging.MaskSessionID(sessionID)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return s.sessionRepo.Get(ctx, sessionID)
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.sessionRepo.Get(ctx, sessionID)
}

func (s *sessionService) Touch(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Touch(ctx, sessionID)
}

func (s *sessionService) LinkAccount(ctx context.Context, sessionID, email string, accountID uuid.UUID) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	if err := s.sessionRepo.LinkAccount(ctx, sessionID, email, accountID); err != nil {
		s.logger.Error("Failed to link session to account",
			zap.String("session_id", logging.MaskSessionID(sessionID)),
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to link session to account: %w", err)
	}

	s.logger.Info("Session linked to account",
		zap.String("session_id", logging.MaskSessionID(sessionID)),
		zap.String("account_id", accountID.String()))
	return nil
}

func (s *sessionService) Delete(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
