// Package persistence provides database adapters.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"assistant_server/core/domain"
	"assistant_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/oauth2"
)

// accountRow mirrors the accounts table.
type accountRow struct {
	UserID       uuid.UUID      `db:"user_id"`
	Provider     string         `db:"provider"`
	AccessToken  sql.NullString `db:"access_token"`
	RefreshToken sql.NullString `db:"refresh_token"`
}

func (r *accountRow) toDomain() *domain.UserCalendarAccount {
	return &domain.UserCalendarAccount{
		UserID:       r.UserID,
		Provider:     r.Provider,
		AccessToken:  r.AccessToken.String,
		RefreshToken: r.RefreshToken.String,
	}
}

// AccountAdapter reads and writes OAuth grants in Postgres.
type AccountAdapter struct {
	db *sqlx.DB
}

var (
	_ out.AccountRepository = (*AccountAdapter)(nil)
	_ out.AccountWriter     = (*AccountAdapter)(nil)
)

func NewAccountAdapter(db *sqlx.DB) *AccountAdapter {
	return &AccountAdapter{db: db}
}

func (a *AccountAdapter) GetByUserAndProvider(ctx context.Context, userID uuid.UUID, provider string) (*domain.UserCalendarAccount, error) {
	var row accountRow
	query := `
		SELECT user_id, provider, access_token, refresh_token
		FROM accounts
		WHERE user_id = $1 AND provider = $2
		LIMIT 1`

	if err := a.db.GetContext(ctx, &row, query, userID, provider); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, out.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return row.toDomain(), nil
}

// Upsert keeps an existing refresh token when the new grant omits one;
// Google only returns it on the first consent.
func (a *AccountAdapter) Upsert(ctx context.Context, userID uuid.UUID, provider string, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidInput)
	}

	query := `
		INSERT INTO accounts (user_id, provider, access_token, refresh_token)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, accounts.refresh_token)`

	if _, err := a.db.ExecContext(ctx, query, userID, provider, token.AccessToken, token.RefreshToken); err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}
