package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/codeangel0930/kintone-rest-api-client/pkg/record"
)

// ErrNotFound is returned when a mirrored record or sync run does not exist.
var ErrNotFound = errors.New("not found")

// Store reads and writes the mirror tables.
type Store struct {
	db     *gorm.DB
	logger hclog.Logger
}

// NewStore creates a store and migrates its tables.
func NewStore(db *gorm.DB, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := db.AutoMigrate(modelsToAutoMigrate()...); err != nil {
		return nil, fmt.Errorf("failed to migrate mirror tables: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.Named("mirror-store"),
	}, nil
}

// Get returns one mirrored record.
func (s *Store) Get(ctx context.Context, app record.AppID, id record.RecordID) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).
		Where("app_id = ? AND record_id = ?", string(app), string(id)).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("record %s in app %s: %w", id, app, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get mirrored record: %w", err)
	}
	return &rec, nil
}

// List returns every mirrored record of an app in the order they were first
// mirrored.
func (s *Store) List(ctx context.Context, app record.AppID) ([]Record, error) {
	var recs []Record
	err := s.db.WithContext(ctx).
		Where("app_id = ?", string(app)).
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mirrored records: %w", err)
	}
	return recs, nil
}

// Count returns the number of mirrored records of an app.
func (s *Store) Count(ctx context.Context, app record.AppID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Record{}).
		Where("app_id = ?", string(app)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count mirrored records: %w", err)
	}
	return count, nil
}

// LatestRun returns the most recently started sync run of an app.
func (s *Store) LatestRun(ctx context.Context, app record.AppID) (*SyncRun, error) {
	var run SyncRun
	err := s.db.WithContext(ctx).
		Where("app_id = ?", string(app)).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sync run for app %s: %w", app, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest sync run: %w", err)
	}
	return &run, nil
}
