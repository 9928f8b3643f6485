package integrity

import (
	"context"
	"errors"

	"customer-sync/core/directory"
	"customer-sync/core/storage"
	"customer-sync/feature/customers"
	"customer-sync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errNoStorage   = errors.New("storage not configured")
	errNoDirectory = errors.New("directory not configured")
)

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	bucket  string
	logger  *zap.Logger
	db      *gorm.DB
	table   string
	columns []string
	folders []string
	dir     directory.Directory
}

// NewService creates a new integrity service. Any collaborator may be nil;
// the matching check then reports an error.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB, cfg customers.Config, dir directory.Directory) *Service {
	return &Service{
		client:  client,
		bucket:  bucket,
		logger:  logger,
		db:      db,
		table:   cfg.Table,
		columns: cfg.Columns(),
		folders: []string{cfg.ArchivePrefix},
		dir:     dir,
	}
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, errNoStorage
	}
	return checks.CheckStructure(ctx, s.client, s.bucket, s.folders)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.client == nil {
		return errNoStorage
	}
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckServer verifies the company table schema.
func (s *Service) CheckServer() (*checks.ServerReport, error) {
	return checks.CheckServerIntegrity(s.db, s.table, s.columns)
}

// CheckDirectory verifies the directory answers.
func (s *Service) CheckDirectory(ctx context.Context) (*checks.DirectoryReport, error) {
	if s.dir == nil {
		return nil, errNoDirectory
	}
	return checks.CheckDirectory(ctx, s.dir), nil
}
