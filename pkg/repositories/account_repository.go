package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/database"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
)

// AccountProfileUpdate carries the fields of a partial account update. Nil
// fields are left untouched.
type AccountProfileUpdate struct {
	Name     *string
	Image    *string
	PlanTier *models.PlanTier
}

// AccountRepository provides data access for accounts. Accounts are keyed by
// email: UpsertByEmail creates the row on first sign-in and refreshes profile
// fields on every subsequent one.
type AccountRepository interface {
	UpsertByEmail(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update *AccountProfileUpdate) error
	IncrementAnalysisCount(ctx context.Context, id uuid.UUID) (int, error)
	Touch(ctx context.Context, id uuid.UUID) error
}

type accountRepository struct{}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository() AccountRepository {
	return &accountRepository{}
}

var _ AccountRepository = (*accountRepository)(nil)

const accountColumns = `id, email, name, image, plan_tier, analysis_count, created_at, last_active_at`

func (r *accountRepository) UpsertByEmail(ctx context.Context, account *models.Account) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		INSERT INTO accounts (email, name, image, plan_tier)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET name = COALESCE(EXCLUDED.name, accounts.name),
		    image = COALESCE(EXCLUDED.image, accounts.image),
		    last_active_at = now()
		RETURNING id, plan_tier, analysis_count, created_at, last_active_at`

	if account.PlanTier == "" {
		account.PlanTier = models.PlanFree
	}

	err := scope.Conn.QueryRow(ctx, query,
		account.Email,
		nullString(account.Name),
		nullString(account.Image),
		account.PlanTier,
	).Scan(&account.ID, &account.PlanTier, &account.AnalysisCount, &account.CreatedAt, &account.LastActiveAt)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (r *accountRepository) get(ctx context.Context, query string, arg any) (*models.Account, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	row := scope.Conn.QueryRow(ctx, query, arg)
	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Account not found
		}
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update *AccountProfileUpdate) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE accounts
		SET name = COALESCE($2, name),
		    image = COALESCE($3, image),
		    plan_tier = COALESCE($4, plan_tier),
		    last_active_at = now()
		WHERE id = $1`

	result, err := scope.Conn.Exec(ctx, query, id, update.Name, update.Image, update.PlanTier)
	if err != nil {
		return fmt.Errorf("failed to update account profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *accountRepository) IncrementAnalysisCount(ctx context.Context, id uuid.UUID) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, fmt.Errorf("no database scope in context")
	}

	query := `
		UPDATE accounts
		SET analysis_count = analysis_count + 1,
		    last_active_at = now()
		WHERE id = $1
		RETURNING analysis_count`

	var count int
	err := scope.Conn.QueryRow(ctx, query, id).Scan(&count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment analysis count: %w", err)
	}

	return count, nil
}

func (r *accountRepository) Touch(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no database scope in context")
	}

	result, err := scope.Conn.Exec(ctx, `UPDATE accounts SET last_active_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to touch account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	var name, image *string

	err := row.Scan(
		&a.ID,
		&a.Email,
		&name,
		&image,
		&a.PlanTier,
		&a.AnalysisCount,
		&a.CreatedAt,
		&a.LastActiveAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	if name != nil {
		a.Name = *name
	}
	if image != nil {
		a.Image = *image
	}

	return &a, nil
}
