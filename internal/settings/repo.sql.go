package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository persists per-user settings. Writes upsert on user_id.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const settingsColumns = `id, user_id, empresa, cnpj, endereco, logo_path, created_at, updated_at`

func scanSettings(row pgx.Row) (*Settings, error) {
	var s Settings
	err := row.Scan(&s.ID, &s.UserID, &s.Empresa, &s.CNPJ, &s.Endereco, &s.LogoPath, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get fetches the user's settings row. ok is false when none exists yet.
func (r *PGRepository) Get(ctx context.Context, userID int64) (*Settings, bool, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM user_settings WHERE user_id = $1`, userID,
	)
	s, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return s, true, nil
}

// Upsert writes the company profile fields, keeping any stored logo path.
func (r *PGRepository) Upsert(ctx context.Context, userID int64, empresa, cnpj, endereco string) (*Settings, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO user_settings (user_id, empresa, cnpj, endereco, logo_path, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, '', now(), now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET empresa = EXCLUDED.empresa, cnpj = EXCLUDED.cnpj, endereco = EXCLUDED.endereco, updated_at = now()
		 RETURNING `+settingsColumns,
		userID, empresa, cnpj, endereco,
	)
	return scanSettings(row)
}

// SetLogoPath stores the uploaded logo reference, creating the row when
// the user never saved a profile. Returns the previous path so the caller
// can remove the replaced file.
func (r *PGRepository) SetLogoPath(ctx context.Context, userID int64, path string) (string, *Settings, error) {
	var previous string
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(logo_path, '') FROM user_settings WHERE user_id = $1`, userID,
	).Scan(&previous)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", nil, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO user_settings (user_id, empresa, cnpj, endereco, logo_path, created_at, updated_at)
		 VALUES ($1, '', '', '', $2, now(), now())
		 ON CONFLICT (user_id) DO UPDATE SET logo_path = EXCLUDED.logo_path, updated_at = now()
		 RETURNING `+settingsColumns,
		userID, path,
	)
	s, err := scanSettings(row)
	if err != nil {
		return "", nil, err
	}
	return previous, s, nil
}
