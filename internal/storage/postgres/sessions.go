package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func (r *sessionRepository) Save(ctx context.Context, s model.Session) error {
	const query = `INSERT INTO sessions (id, user_id, user_name, user_email, role, access_token, refresh_token, created_at, updated_at, last_seen_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.storage.pool.Exec(ctx, query,
		s.ID.String(), s.User.ID, s.User.Name, s.User.Email, string(s.User.Role),
		s.AccessToken, s.RefreshToken, s.CreatedAt, s.UpdatedAt, s.LastSeenAt)
	return err
}

func (r *sessionRepository) UpdateTokens(ctx context.Context, s model.Session) error {
	const query = `UPDATE sessions SET access_token=$2, refresh_token=$3, updated_at=$4 WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, s.ID.String(), s.AccessToken, s.RefreshToken, s.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `UPDATE sessions SET last_seen_at=$2 WHERE id=$1 AND last_seen_at < $2`
	_, err := r.storage.pool.Exec(ctx, query, id.String(), at)
	return err
}

func (r *sessionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	const query = `SELECT id, user_id, user_name, user_email, role, access_token, refresh_token, created_at, updated_at, last_seen_at
                   FROM sessions WHERE id=$1`
	var (
		s       model.Session
		rawID   string
		rawRole string
	)
	err := r.storage.pool.QueryRow(ctx, query, id.String()).Scan(
		&rawID, &s.User.ID, &s.User.Name, &s.User.Email, &rawRole,
		&s.AccessToken, &s.RefreshToken, &s.CreatedAt, &s.UpdatedAt, &s.LastSeenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if s.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("session id %q: %w", rawID, err)
	}
	s.User.Role = model.Role(rawRole)
	return &s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM sessions WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, id.String())
	return err
}

func (r *sessionRepository) DeleteIdle(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	const query = `DELETE FROM sessions WHERE last_seen_at < $1 RETURNING id`
	rows, err := r.storage.pool.Query(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			r.storage.logger.Warn("skip malformed session id", "id", raw, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
