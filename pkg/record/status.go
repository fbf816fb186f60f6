package record

import (
	"context"
)

// UpdateAssigneesParams replaces the process-management assignees of a record.
type UpdateAssigneesParams struct {
	App       AppID    `json:"app"`
	ID        RecordID `json:"id"`
	Assignees []string `json:"assignees"`
	Revision  Revision `json:"revision,omitempty"`
}

// UpdateAssignees sets the assignees of a record.
func (c *Client) UpdateAssignees(ctx context.Context, params UpdateAssigneesParams) (*UpdateRecordResult, error) {
	var result UpdateRecordResult
	if err := c.http.Put(ctx, c.path("record/assignees.json"), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateStatusParams runs a process-management action on a record. Assignee
// is required only when the next status has several candidate assignees.
type UpdateStatusParams struct {
	Action   string   `json:"action"`
	App      AppID    `json:"app"`
	Assignee string   `json:"assignee,omitempty"`
	ID       RecordID `json:"id"`
	Revision Revision `json:"revision,omitempty"`
}

// UpdateStatus runs a status action on a record.
func (c *Client) UpdateStatus(ctx context.Context, params UpdateStatusParams) (*UpdateRecordResult, error) {
	var result UpdateRecordResult
	if err := c.http.Put(ctx, c.path("record/status.json"), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StatusAction is one entry of a bulk status update.
type StatusAction struct {
	Action   string   `json:"action"`
	Assignee string   `json:"assignee,omitempty"`
	ID       RecordID `json:"id"`
	Revision Revision `json:"revision,omitempty"`
}

// UpdateStatusesParams runs status actions on several records of one app.
type UpdateStatusesParams struct {
	App     AppID          `json:"app"`
	Records []StatusAction `json:"records"`
}

// UpdateStatuses runs status actions and returns the new revisions.
func (c *Client) UpdateStatuses(ctx context.Context, params UpdateStatusesParams) ([]UpdatedRecord, error) {
	var resp struct {
		Records []UpdatedRecord `json:"records"`
	}
	if err := c.http.Put(ctx, c.path("records/status.json"), params, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}
