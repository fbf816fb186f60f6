package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codeangel0930/kintone-rest-api-client/pkg/record"
)

const (
	// Field codes every mirrored record needs.
	idField       = "$id"
	revisionField = "$revision"

	maxCursorSize = 500
	upsertBatch   = 200
)

// Fetcher reads every record matching a query. *record.Client implements it.
type Fetcher interface {
	GetAllRecordsWithCursor(ctx context.Context, params record.GetAllRecordsWithCursorParams) (*record.GetAllRecordsResult, error)
}

// SyncOptions selects the records to mirror. When Fields is set, $id and
// $revision are added to it.
type SyncOptions struct {
	App    record.AppID
	Query  string
	Fields []string
	Size   int
}

// Validate validates the sync options.
func (o SyncOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.App, validation.Required),
		validation.Field(&o.Size, validation.Min(0), validation.Max(maxCursorSize)),
	)
}

func (o SyncOptions) fields() []string {
	if len(o.Fields) == 0 {
		return nil
	}
	fields := slices.Clone(o.Fields)
	for _, f := range []string{idField, revisionField} {
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Syncer refreshes the mirror of an app from kintone.
type Syncer struct {
	fetcher Fetcher
	store   *Store
	logger  hclog.Logger
}

// NewSyncer creates a syncer.
func NewSyncer(fetcher Fetcher, store *Store, logger hclog.Logger) *Syncer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Syncer{
		fetcher: fetcher,
		store:   store,
		logger:  logger.Named("mirror-sync"),
	}
}

// Sync replaces the mirror of an app with the records currently matching the
// query. Records already mirrored keep their position; records the query no
// longer returns are removed.
//
// The run is returned on failure too, with its error recorded. The returned
// error is the one that stopped the sync.
func (s *Syncer) Sync(ctx context.Context, opts SyncOptions) (*SyncRun, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sync options: %w", err)
	}

	run := &SyncRun{
		ID:        uuid.NewString(),
		AppID:     string(opts.App),
		Query:     opts.Query,
		Status:    SyncStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.store.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to create sync run: %w", err)
	}

	logger := s.logger.With("app", opts.App, "run_id", run.ID)
	logger.Debug("starting sync", "query", opts.Query)

	result, err := s.fetcher.GetAllRecordsWithCursor(ctx, record.GetAllRecordsWithCursorParams{
		App:    opts.App,
		Fields: opts.fields(),
		Query:  opts.Query,
		Size:   opts.Size,
	})
	if err != nil {
		return s.fail(ctx, logger, run, err)
	}
	run.TotalCount = result.TotalCount
	run.Fetched = int64(len(result.Records))

	rows, err := toRows(opts.App, run.ID, result.Records)
	if err != nil {
		return s.fail(ctx, logger, run, err)
	}

	err = s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "app_id"}, {Name: "record_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"revision", "data", "sync_run_id", "updated_at"}),
			}).CreateInBatches(rows, upsertBatch).Error
			if err != nil {
				return fmt.Errorf("failed to upsert records: %w", err)
			}
		}

		del := tx.Where("app_id = ? AND sync_run_id <> ?", run.AppID, run.ID).Delete(&Record{})
		if del.Error != nil {
			return fmt.Errorf("failed to remove stale records: %w", del.Error)
		}
		run.Removed = del.RowsAffected

		finished := time.Now().UTC()
		run.Status = SyncStatusCompleted
		run.FinishedAt = &finished
		if err := tx.Save(run).Error; err != nil {
			return fmt.Errorf("failed to complete sync run: %w", err)
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, logger, run, err)
	}

	logger.Info("sync completed",
		"fetched", run.Fetched,
		"stored", len(rows),
		"removed", run.Removed,
		"duration", run.Duration(),
	)
	return run, nil
}

// fail marks the run failed and returns err unchanged. The run is saved even
// when ctx is already cancelled.
func (s *Syncer) fail(ctx context.Context, logger hclog.Logger, run *SyncRun, err error) (*SyncRun, error) {
	finished := time.Now().UTC()
	run.Status = SyncStatusFailed
	run.Error = err.Error()
	run.FinishedAt = &finished

	logger.Error("sync failed", "error", err)

	if saveErr := s.store.db.WithContext(context.WithoutCancel(ctx)).Save(run).Error; saveErr != nil {
		logger.Error("failed to record sync failure", "error", saveErr)
	}
	return run, err
}

// toRows converts fetched records to mirror rows. A record seen twice keeps
// its first position and its last content.
func toRows(app record.AppID, runID string, recs []record.Record) ([]Record, error) {
	rows := make([]Record, 0, len(recs))
	index := make(map[string]int, len(recs))

	for i, rec := range recs {
		id, err := systemValue(rec, idField)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		revision, _ := systemValue(rec, revisionField)

		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %s: %w", id, err)
		}

		row := Record{
			AppID:     string(app),
			RecordID:  id,
			Revision:  revision,
			Data:      JSON(data),
			SyncRunID: runID,
		}
		if j, ok := index[id]; ok {
			rows[j] = row
			continue
		}
		index[id] = len(rows)
		rows = append(rows, row)
	}
	return rows, nil
}

func systemValue(rec record.Record, code string) (string, error) {
	v, ok := rec.Value(code)
	if !ok {
		return "", fmt.Errorf("missing %s field", code)
	}
	switch val := v.(type) {
	case string:
		if val == "" {
			return "", fmt.Errorf("empty %s field", code)
		}
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case json.Number:
		return val.String(), nil
	default:
		return "", fmt.Errorf("unexpected %s value of type %T", code, v)
	}
}
