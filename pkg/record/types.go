package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// AppID identifies a kintone app. The API accepts numeric and string IDs;
// both are carried as strings.
type AppID string

// AppIDFromInt converts a numeric app ID.
func AppIDFromInt(id int64) AppID {
	return AppID(strconv.FormatInt(id, 10))
}

// RecordID identifies a record within an app. Assigned by the server.
type RecordID string

// RecordIDFromInt converts a numeric record ID.
func RecordIDFromInt(id int64) RecordID {
	return RecordID(strconv.FormatInt(id, 10))
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	s, err := unmarshalStringOrNumber(data)
	if err != nil {
		return fmt.Errorf("invalid record id: %w", err)
	}
	*id = RecordID(s)
	return nil
}

// Revision is the optimistic-concurrency token of a record. An empty
// Revision is omitted from requests, which skips the check.
type Revision string

// UnmarshalJSON accepts both JSON numbers and strings.
func (r *Revision) UnmarshalJSON(data []byte) error {
	s, err := unmarshalStringOrNumber(data)
	if err != nil {
		return fmt.Errorf("invalid revision: %w", err)
	}
	*r = Revision(s)
	return nil
}

// CommentID identifies a comment within a record.
type CommentID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *CommentID) UnmarshalJSON(data []byte) error {
	s, err := unmarshalStringOrNumber(data)
	if err != nil {
		return fmt.Errorf("invalid comment id: %w", err)
	}
	*id = CommentID(s)
	return nil
}

func unmarshalStringOrNumber(data []byte) (string, error) {
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Record maps field codes to field values. The schema is defined by the app
// on the server and is not checked here.
type Record map[string]any

// Value returns the value of a field. kintone wraps values in field objects
// such as {"type": "NUMBER", "value": "3"}; the wrapped value is returned
// when present, otherwise the raw entry.
func (r Record) Value(code string) (any, bool) {
	field, ok := r[code]
	if !ok {
		return nil, false
	}
	if obj, ok := field.(map[string]any); ok {
		if v, ok := obj["value"]; ok {
			return v, true
		}
	}
	return field, true
}

// UpdateKey selects a record by a unique field instead of its ID.
type UpdateKey struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// MentionType is the kind of entity a mention refers to.
type MentionType string

const (
	MentionTypeUser         MentionType = "USER"
	MentionTypeGroup        MentionType = "GROUP"
	MentionTypeOrganization MentionType = "ORGANIZATION"
)

// Mention references a user, group or organization in a comment.
type Mention struct {
	Code string      `json:"code"`
	Type MentionType `json:"type"`
}

// Creator identifies who posted a comment.
type Creator struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Comment is a comment posted on a record.
type Comment struct {
	ID        CommentID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Creator   Creator   `json:"creator"`
	Mentions  []Mention `json:"mentions"`
}

// UpdatedRecord is the per-record result of a bulk update.
type UpdatedRecord struct {
	ID       RecordID `json:"id"`
	Revision Revision `json:"revision"`
}
