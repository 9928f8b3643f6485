package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"customer-sync/core/customer"
	"customer-sync/core/database"
	"customer-sync/core/utils"

	"gorm.io/gorm"
)

// ErrNoDatabase is returned when the company database is not connected.
var ErrNoDatabase = errors.New("company database not connected")

// DBSource loads customers from the company database.
type DBSource struct {
	db  *gorm.DB
	cfg Config
}

// NewDBSource creates a source reading the table described by cfg.
func NewDBSource(db *gorm.DB, cfg Config) *DBSource {
	return &DBSource{db: db, cfg: cfg}
}

// Name identifies the source in the candidate cache.
func (s *DBSource) Name() string {
	return "db:" + s.cfg.Table
}

// Verify checks that the table carries every mapped column.
func (s *DBSource) Verify(ctx context.Context) error {
	if s.db == nil {
		return ErrNoDatabase
	}
	missing, err := database.MissingColumns(s.db.WithContext(ctx), s.cfg.Table, s.cfg.Columns()...)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", s.cfg.Table, strings.Join(missing, ", "))
	}
	return nil
}

// Load returns the customers ordered by business key.
func (s *DBSource) Load(ctx context.Context) ([]customer.Customer, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}

	var rows []map[string]any
	err := s.db.WithContext(ctx).
		Table(s.cfg.Table).
		Select(s.cfg.Columns()).
		Order(s.cfg.KeyColumn).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load customers from %s: %w", s.cfg.Table, err)
	}

	out := make([]customer.Customer, 0, len(rows))
	for _, row := range rows {
		if s.cfg.ActiveColumn != "" && !utils.ToBool(row[s.cfg.ActiveColumn]) {
			continue
		}
		out = append(out, customer.New(
			utils.ToString(row[s.cfg.NameColumn]),
			utils.ToString(row[s.cfg.FaxColumn]),
			utils.ToString(row[s.cfg.KeyColumn]),
		))
	}
	return out, nil
}
