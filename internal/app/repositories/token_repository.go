package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/abroadcrm/internal/pkg/logger"
)

// TokenRepository is the PostgreSQL token blacklist
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Revoke blacklists a token id until expiresAt. Revoking twice is not an error.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("token_blacklist").
		Columns("jti", "expires_at", "revoked_at").
		Values(jti, expiresAt, now()).
		Suffix("ON CONFLICT (jti) DO NOTHING").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building revoke token SQL")
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("jti", jti).Msg("Error executing revoke token query")
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token id is blacklisted and not yet expired
func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("token_blacklist").
		Where(squirrel.Eq{"jti": jti}).
		Where(squirrel.Gt{"expires_at": now()}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build token lookup query: %w", err)
	}

	var revoked bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&revoked); err != nil {
		logger.Error().Err(err).Str("jti", jti).Msg("Error scanning token blacklist row")
		return false, fmt.Errorf("error checking token blacklist: %w", err)
	}
	return revoked, nil
}

// PurgeExpired removes blacklist entries whose token has expired anyway
func (r *TokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete("token_blacklist").
		Where(squirrel.Lt{"expires_at": now()}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building cleanup tokens SQL")
		return 0, fmt.Errorf("failed to build cleanup tokens query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing cleanup tokens query")
		return 0, fmt.Errorf("error cleaning up tokens: %w", err)
	}

	deleted := tag.RowsAffected()
	logger.Info().Int64("deletedCount", deleted).Msg("Cleaned up expired blacklisted tokens")
	return deleted, nil
}
