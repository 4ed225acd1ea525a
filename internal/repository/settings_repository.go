package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/rotaworks/rota-api/internal/models"
)

// SettingsRepository persists the store calendar as a single versioned
// JSON payload row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

type settingsRow struct {
	ID        string         `db:"id"`
	Payload   types.JSONText `db:"payload"`
	Version   int            `db:"version"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// Get loads the current store settings.
func (r *SettingsRepository) Get(ctx context.Context) (*models.StoreSettings, error) {
	const query = `SELECT id, payload, version, updated_at FROM store_settings ORDER BY version DESC LIMIT 1`
	var row settingsRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, err
	}

	var settings models.StoreSettings
	if err := json.Unmarshal(row.Payload, &settings); err != nil {
		return nil, fmt.Errorf("decode store settings payload: %w", err)
	}
	settings.ID = row.ID
	settings.Version = row.Version
	settings.UpdatedAt = row.UpdatedAt
	return &settings, nil
}

// Save stores a new settings version. Each save appends a row so earlier
// versions stay queryable by the runs that referenced them.
func (r *SettingsRepository) Save(ctx context.Context, settings *models.StoreSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode store settings payload: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings tx: %w", err)
	}

	var version int
	if err := tx.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) + 1 FROM store_settings`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("compute next settings version: %w", err)
	}

	row := settingsRow{
		ID:        uuid.NewString(),
		Payload:   types.JSONText(payload),
		Version:   version,
		UpdatedAt: time.Now().UTC(),
	}
	const query = `INSERT INTO store_settings (id, payload, version, updated_at)
		VALUES (:id, :payload, :version, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert store settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings tx: %w", err)
	}

	settings.ID = row.ID
	settings.Version = row.Version
	settings.UpdatedAt = row.UpdatedAt
	return nil
}
