package checks

import (
	"fmt"

	"customer-sync/core/database"

	"gorm.io/gorm"
)

// ServerReport strictly types the result of a schema check.
type ServerReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckServerIntegrity verifies that table carries every wanted column.
func CheckServerIntegrity(db *gorm.DB, table string, columns []string) (*ServerReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	missing, err := database.MissingColumns(db, table, columns...)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}

	report := &ServerReport{
		Table:          table,
		Matched:        len(missing) == 0,
		MissingColumns: []string{},
		Status:         "ok",
	}
	if !report.Matched {
		report.MissingColumns = missing
		report.Status = "error"
	}
	return report, nil
}
