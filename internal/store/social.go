package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
)

type SocialStore struct {
	db *pgxpool.Pool
}

func NewSocialStore(db *pgxpool.Pool) *SocialStore {
	return &SocialStore{db: db}
}

// Save upserts credentials for a provider; one row per platform.
func (s *SocialStore) Save(ctx context.Context, a *models.SocialAccount) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO social_accounts (provider, access_token, refresh_token, expires_at, provider_user_id)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			provider_user_id = EXCLUDED.provider_user_id,
			updated_at = now()
		RETURNING updated_at
	`, a.Provider, a.AccessToken, a.RefreshToken, a.ExpiresAt, a.ProviderUserID).Scan(&a.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "social.save", "db upsert failed")
	}
	return nil
}

func (s *SocialStore) Get(ctx context.Context, provider string) (*models.SocialAccount, error) {
	var a models.SocialAccount
	err := s.db.QueryRow(ctx, `
		SELECT provider, access_token, COALESCE(refresh_token,''), expires_at,
			COALESCE(provider_user_id,''), updated_at
		FROM social_accounts WHERE provider=$1
	`, provider).Scan(&a.Provider, &a.AccessToken, &a.RefreshToken, &a.ExpiresAt, &a.ProviderUserID, &a.UpdatedAt)
	if err != nil {
		return nil, errors.NotFound("social account", provider)
	}
	return &a, nil
}
