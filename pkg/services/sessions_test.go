package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionService_SaveAndGet(t *testing.T) {
	svc := NewSessionService(newMockSessionRepo(), zap.NewNop())
	ctx := context.Background()

	session, err := svc.Save(ctx, "sess_a", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "sess_a", session.SessionID)
	assert.Equal(t, "user@example.com", session.Email)

	got, err := svc.Get(ctx, "sess_a")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestSessionService_SaveRequiresSessionID(t *testing.T) {
	svc := NewSessionService(newMockSessionRepo(), zap.NewNop())

	_, err := svc.Save(context.Background(), "", "user@example.com")
	require.Error(t, err)
}

func TestSessionService_LinkAccount(t *testing.T) {
	sessionRepo := newMockSessionRepo()
	svc := NewSessionService(sessionRepo, zap.NewNop())
	ctx := context.Background()
	accountID := uuid.New()

	_, err := svc.Save(ctx, "sess_a", "")
	require.NoError(t, err)

	require.NoError(t, svc.LinkAccount(ctx, "sess_a", "user@example.com", accountID))

	session, err := svc.Get(ctx, "sess_a")
	require.NoError(t, err)
	require.NotNil(t, session.AccountID)
	assert.Equal(t, accountID, *session.AccountID)
	assert.Equal(t, "user@example.com", session.Email)
}

func TestSessionService_Delete(t *testing.T) {
	svc := NewSessionService(newMockSessionRepo(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Save(ctx, "sess_a", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "sess_a"))

	got, err := svc.Get(ctx, "sess_a")
	require.NoError(t, err)
	assert.Nil(t, got)
}
