package postgres

import (
	"context"
	"fmt"

	"github.com/VladKovDev/cryptocart/internal/domain/option"
)

type OptionRepository struct {
	db DBTX
}

func NewOptionRepository(db DBTX) *OptionRepository {
	return &OptionRepository{db: db}
}

func (r *OptionRepository) Get(ctx context.Context, name string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRow(ctx, `SELECT value::text FROM options WHERE name = $1`, name).Scan(&value)
	if err != nil {
		return nil, fmt.Errorf("failed to get option %q: %w", name, notFound(err, option.ErrNotFound))
	}
	return value, nil
}

// Set upserts the option. An identical value leaves the row untouched and
// reports false.
func (r *OptionRepository) Set(ctx context.Context, name string, value []byte) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO options (name, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()
		WHERE options.value IS DISTINCT FROM EXCLUDED.value`,
		name, string(value),
	)
	if err != nil {
		return false, fmt.Errorf("failed to set option %q: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OptionRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM options WHERE name = $1`, name); err != nil {
		return fmt.Errorf("failed to delete option %q: %w", name, err)
	}
	return nil
}
