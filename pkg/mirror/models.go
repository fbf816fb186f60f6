package mirror

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/codeangel0930/kintone-rest-api-client/pkg/record"
)

// Record is the local copy of one kintone record.
type Record struct {
	ID uint `gorm:"primaryKey" json:"-"`

	AppID    string `gorm:"type:varchar(64);not null;uniqueIndex:idx_mirror_app_record,priority:1" json:"app"`
	RecordID string `gorm:"type:varchar(64);not null;uniqueIndex:idx_mirror_app_record,priority:2" json:"id"`
	Revision string `gorm:"type:varchar(64);not null" json:"revision"`

	// Data is the record as returned by the API, field codes to field objects.
	Data JSON `gorm:"not null" json:"data"`

	// SyncRunID is the run that last saw this record.
	SyncRunID string `gorm:"type:varchar(36);not null;index:idx_mirror_sync_run" json:"syncRunId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Record) TableName() string {
	return "mirror_records"
}

// Fields decodes the stored record.
func (r *Record) Fields() (record.Record, error) {
	var rec record.Record
	if err := json.Unmarshal(r.Data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode mirrored record %s/%s: %w", r.AppID, r.RecordID, err)
	}
	return rec, nil
}

// SyncRun statuses
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// SyncRun records one refresh of an app's mirror.
type SyncRun struct {
	ID    string `gorm:"type:varchar(36);primaryKey" json:"id"`
	AppID string `gorm:"type:varchar(64);not null;index:idx_mirror_sync_run_app" json:"app"`
	Query string `gorm:"type:text" json:"query,omitempty"`

	Status string `gorm:"type:varchar(20);not null;default:'running'" json:"status"`

	// TotalCount is the count reported by the cursor; Fetched is what was read.
	TotalCount string `gorm:"type:varchar(20)" json:"totalCount"`
	Fetched    int64  `json:"fetched"`
	Removed    int64  `json:"removed"`

	Error string `gorm:"type:text" json:"error,omitempty"`

	StartedAt  time.Time  `gorm:"not null" json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// TableName specifies the table name.
func (SyncRun) TableName() string {
	return "mirror_sync_runs"
}

// Duration returns how long the run took, or zero while it is running.
func (r *SyncRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func modelsToAutoMigrate() []interface{} {
	return []interface{}{
		&Record{},
		&SyncRun{},
	}
}
