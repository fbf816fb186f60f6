package record

import (
	"context"
	"time"
)

// cursorReleaseTimeout bounds the best-effort delete issued after a failed walk.
const cursorReleaseTimeout = 10 * time.Second

// CreateCursorParams scopes a new cursor. Size is the page size; zero leaves
// it to the server default.
type CreateCursorParams struct {
	App    AppID    `json:"app"`
	Fields []string `json:"fields,omitempty"`
	Query  string   `json:"query,omitempty"`
	Size   int      `json:"size,omitempty"`
}

// Cursor is a server-side handle over a query result set. TotalCount is the
// number of matching records when the cursor was created.
type Cursor struct {
	ID         string `json:"id"`
	TotalCount string `json:"totalCount"`
}

// CursorPage is one batch of records read from a cursor. Next reports whether
// more pages remain; the server discards the cursor once it is false.
type CursorPage struct {
	Records []Record `json:"records"`
	Next    bool     `json:"next"`
}

type cursorParams struct {
	ID string `json:"id"`
}

// CreateCursor creates a cursor.
func (c *Client) CreateCursor(ctx context.Context, params CreateCursorParams) (*Cursor, error) {
	var cursor Cursor
	if err := c.http.Post(ctx, c.path("records/cursor.json"), params, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// GetRecordsByCursor reads the next page of a cursor. Calls for the same
// cursor must not overlap.
func (c *Client) GetRecordsByCursor(ctx context.Context, id string) (*CursorPage, error) {
	var page CursorPage
	if err := c.http.Get(ctx, c.path("records/cursor.json"), cursorParams{ID: id}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DeleteCursor releases a cursor before it is exhausted.
func (c *Client) DeleteCursor(ctx context.Context, id string) error {
	return c.http.Delete(ctx, c.path("records/cursor.json"), cursorParams{ID: id}, nil)
}

// GetAllRecordsWithCursorParams selects the records to read. Size is passed
// through to CreateCursor.
type GetAllRecordsWithCursorParams struct {
	App    AppID
	Fields []string
	Query  string
	Size   int
}

// GetAllRecordsResult holds every record of a completed walk in server order.
type GetAllRecordsResult struct {
	Records    []Record
	TotalCount string
}

// GetAllRecordsWithCursor reads every record matching the query through a
// cursor. TotalCount is the count reported when the cursor was created.
//
// If any page fails, the cursor is deleted (best effort, outcome ignored)
// and the page error is returned unchanged with no records. A failure to
// create the cursor is returned directly.
func (c *Client) GetAllRecordsWithCursor(ctx context.Context, params GetAllRecordsWithCursorParams) (*GetAllRecordsResult, error) {
	cursor, err := c.CreateCursor(ctx, CreateCursorParams{
		App:    params.App,
		Fields: params.Fields,
		Query:  params.Query,
		Size:   params.Size,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("cursor created",
		"app", params.App,
		"cursor", cursor.ID,
		"total_count", cursor.TotalCount,
	)

	records, err := c.drainCursor(ctx, cursor.ID)
	if err != nil {
		return nil, err
	}

	return &GetAllRecordsResult{
		Records:    records,
		TotalCount: cursor.TotalCount,
	}, nil
}

// drainCursor fetches pages until the server reports no more. The cursor is
// owned by this walk: it is released here on failure and never reused.
func (c *Client) drainCursor(ctx context.Context, id string) (records []Record, err error) {
	defer func() {
		if err != nil {
			records = nil
			c.releaseCursor(ctx, id)
		}
	}()

	records = []Record{}
	pages := 0
	for {
		var page *CursorPage
		page, err = c.GetRecordsByCursor(ctx, id)
		if err != nil {
			return nil, err
		}
		pages++
		records = append(records, page.Records...)

		c.logger.Trace("cursor page fetched",
			"cursor", id,
			"page", pages,
			"records", len(page.Records),
		)

		if !page.Next {
			break
		}
	}

	c.logger.Debug("cursor exhausted", "cursor", id, "pages", pages, "records", len(records))
	return records, nil
}

// releaseCursor deletes a cursor after a failed walk. It runs even when ctx
// is already cancelled. The delete error is dropped without logging.
func (c *Client) releaseCursor(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cursorReleaseTimeout)
	defer cancel()

	_ = c.DeleteCursor(ctx, id)
}
