// Package database handles database connections and schema inspection.
//
// It wraps GORM to open either the MySQL company database or a SQLite file
// based on the application's configuration.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the customer source verify that the
// configured table carries the columns it reads before a pass starts.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "customers", "company_id", "name", "fax")
package database
