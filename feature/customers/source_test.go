package customers

import (
	"context"
	"errors"
	"testing"

	"customer-sync/core/customer"
	"customer-sync/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func testConfig() Config {
	return Config{
		Table:      "customers",
		KeyColumn:  "company_id",
		NameColumn: "name",
		FaxColumn:  "fax",
		LockKey:    "test-lock",
	}
}

func setupSQLite(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE customers (company_id TEXT, name TEXT, fax TEXT, active INTEGER)").Error)
	require.NoError(t, db.Exec(`INSERT INTO customers VALUES
		('2', 'Globex', '555-0102', 1),
		('1', 'Acme', NULL, 1),
		('3', 'Initech', '555-0103', 0)`).Error)
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestDBSource_Load(t *testing.T) {
	src := NewDBSource(setupSQLite(t), testConfig())

	got, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []customer.Customer{
		customer.New("Acme", "", "1"),
		customer.New("Globex", "555-0102", "2"),
		customer.New("Initech", "555-0103", "3"),
	}, got)
	assert.Equal(t, "db:customers", src.Name())
}

func TestDBSource_LoadActiveOnly(t *testing.T) {
	cfg := testConfig()
	cfg.ActiveColumn = "active"
	src := NewDBSource(setupSQLite(t), cfg)

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].CompanyID)
	assert.Equal(t, "2", got[1].CompanyID)
}

func TestDBSource_LoadMySQL(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"company_id", "name", "fax"}).
		AddRow(int64(10), "Acme", "555-0101").
		AddRow(int64(11), "Globex", nil)
	mock.ExpectQuery("SELECT (.+) FROM `customers` ORDER BY company_id").WillReturnRows(rows)

	got, err := NewDBSource(db, testConfig()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []customer.Customer{
		customer.New("Acme", "555-0101", "10"),
		customer.New("Globex", "", "11"),
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBSource_LoadError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT (.+) FROM `customers`").WillReturnError(errors.New("connection reset"))

	_, err := NewDBSource(db, testConfig()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load customers from customers")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestDBSource_NoDatabase(t *testing.T) {
	src := NewDBSource(nil, testConfig())

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.ErrorIs(t, src.Verify(context.Background()), ErrNoDatabase)
}

func TestDBSource_Verify(t *testing.T) {
	db := setupSQLite(t)

	assert.NoError(t, NewDBSource(db, testConfig()).Verify(context.Background()))

	cfg := testConfig()
	cfg.FaxColumn = "fax_number"
	err := NewDBSource(db, cfg).Verify(context.Background())
	assert.EqualError(t, err, "table customers is missing columns: fax_number")
}
