package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cowork-booking/internal/model"
)

// Schema creates the restore_records table used by MySQLStore.
const Schema = `CREATE TABLE IF NOT EXISTS restore_records (
    record_key     VARCHAR(191) NOT NULL PRIMARY KEY,
    reservation_id VARCHAR(64)  NOT NULL,
    workspace_type VARCHAR(64)  NOT NULL,
    updated_at     DATETIME     NOT NULL
)`

// MySQLStore persists restore records in the restore_records table.
// Each key is a row; saving again overwrites it.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// EnsureSchema creates the table when it is missing.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

func (s *MySQLStore) Load(ctx context.Context, key string) (*model.RestoreRecord, error) {
	var id, wsType string
	err := s.db.QueryRowContext(ctx,
		`SELECT reservation_id, workspace_type FROM restore_records WHERE record_key = ?`, key,
	).Scan(&id, &wsType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mysql load: %w", err)
	}
	if id == "" {
		return nil, ErrCorrupt
	}
	return &model.RestoreRecord{ReservationID: id, WorkspaceType: wsType}, nil
}

func (s *MySQLStore) Save(ctx context.Context, key string, rec model.RestoreRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO restore_records (record_key, reservation_id, workspace_type, updated_at)
         VALUES (?, ?, ?, UTC_TIMESTAMP())
         ON DUPLICATE KEY UPDATE reservation_id = VALUES(reservation_id),
                                 workspace_type = VALUES(workspace_type),
                                 updated_at = VALUES(updated_at)`,
		key, rec.ReservationID, rec.WorkspaceType,
	)
	if err != nil {
		return fmt.Errorf("mysql save: %w", err)
	}
	return nil
}

func (s *MySQLStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM restore_records WHERE record_key = ?`, key); err != nil {
		return fmt.Errorf("mysql remove: %w", err)
	}
	return nil
}

