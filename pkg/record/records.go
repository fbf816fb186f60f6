package record

import (
	"context"
)

// ===================================================================
// Single and bulk record operations
// ===================================================================
// Each method is one call against /record.json or /records.json.
// Transport errors are returned as-is.

// GetRecordParams selects one record.
type GetRecordParams struct {
	App AppID    `json:"app"`
	ID  RecordID `json:"id"`
}

// GetRecord retrieves a single record.
func (c *Client) GetRecord(ctx context.Context, params GetRecordParams) (Record, error) {
	var resp struct {
		Record Record `json:"record"`
	}
	if err := c.http.Get(ctx, c.path("record.json"), params, &resp); err != nil {
		return nil, err
	}
	return resp.Record, nil
}

// AddRecordParams describes a record to create. A nil Record creates a
// record with default field values.
type AddRecordParams struct {
	App    AppID  `json:"app"`
	Record Record `json:"record,omitempty"`
}

// AddRecordResult holds the server-assigned identity of a new record.
type AddRecordResult struct {
	ID       RecordID `json:"id"`
	Revision Revision `json:"revision"`
}

// AddRecord creates a record.
func (c *Client) AddRecord(ctx context.Context, params AddRecordParams) (*AddRecordResult, error) {
	var result AddRecordResult
	if err := c.http.Post(ctx, c.path("record.json"), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateRecordParams updates one record selected by either ID or UpdateKey.
type UpdateRecordParams struct {
	App       AppID      `json:"app"`
	ID        RecordID   `json:"id,omitempty"`
	UpdateKey *UpdateKey `json:"updateKey,omitempty"`
	Record    Record     `json:"record,omitempty"`
	Revision  Revision   `json:"revision,omitempty"`
}

// UpdateRecordResult holds the revision after an update.
type UpdateRecordResult struct {
	Revision Revision `json:"revision"`
}

// UpdateRecord updates a record.
func (c *Client) UpdateRecord(ctx context.Context, params UpdateRecordParams) (*UpdateRecordResult, error) {
	var result UpdateRecordResult
	if err := c.http.Put(ctx, c.path("record.json"), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRecordsParams filters a single page of records. Query uses the kintone
// query language, including its own limit and offset clauses.
type GetRecordsParams struct {
	App        AppID    `json:"app"`
	Fields     []string `json:"fields,omitempty"`
	Query      string   `json:"query,omitempty"`
	TotalCount bool     `json:"totalCount,omitempty"`
}

// GetRecordsResult is one page of records. TotalCount is nil unless it was
// requested.
type GetRecordsResult struct {
	Records    []Record `json:"records"`
	TotalCount *string  `json:"totalCount"`
}

// GetRecords retrieves the records matching a query.
func (c *Client) GetRecords(ctx context.Context, params GetRecordsParams) (*GetRecordsResult, error) {
	var result GetRecordsResult
	if err := c.http.Get(ctx, c.path("records.json"), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddRecordsParams creates several records in one request.
type AddRecordsParams struct {
	App     AppID    `json:"app"`
	Records []Record `json:"records"`
}

// AddRecordsResult lists the new IDs and revisions in request order.
type AddRecordsResult struct {
	IDs       []RecordID `json:"ids"`
	Revisions []Revision `json:"revisions"`
}

// AddRecords creates records.
func (c *Client) AddRecords(ctx context.Context, params AddRecordsParams) (*AddRecordsResult, error) {
	var result AddRecordsResult
	if err := c.http.Post(ctx, c.path("records.json"), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordUpdate is one entry of a bulk update, selected by ID or UpdateKey.
type RecordUpdate struct {
	ID        RecordID   `json:"id,omitempty"`
	UpdateKey *UpdateKey `json:"updateKey,omitempty"`
	Record    Record     `json:"record,omitempty"`
	Revision  Revision   `json:"revision,omitempty"`
}

// UpdateRecordsParams updates several records in one request.
type UpdateRecordsParams struct {
	App     AppID          `json:"app"`
	Records []RecordUpdate `json:"records"`
}

// UpdateRecords updates records and returns their new revisions.
func (c *Client) UpdateRecords(ctx context.Context, params UpdateRecordsParams) ([]UpdatedRecord, error) {
	var resp struct {
		Records []UpdatedRecord `json:"records"`
	}
	if err := c.http.Put(ctx, c.path("records.json"), params, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// DeleteRecordsParams deletes records by ID. Revisions, when given, must be
// in the same order as IDs.
type DeleteRecordsParams struct {
	App       AppID      `json:"app"`
	IDs       []RecordID `json:"ids"`
	Revisions []Revision `json:"revisions,omitempty"`
}

// DeleteRecords deletes records.
func (c *Client) DeleteRecords(ctx context.Context, params DeleteRecordsParams) error {
	return c.http.Delete(ctx, c.path("records.json"), params, nil)
}
