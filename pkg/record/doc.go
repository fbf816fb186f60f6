// Package record provides typed access to the kintone record API.
//
// # Overview
//
// Client maps each record operation to a single call on an injected
// HTTPClient: records, bulk records, comments, assignees and process
// management status. It adds no state of its own.
//
// # Cursor Walks
//
// GetAllRecordsWithCursor is the only operation that issues several calls. It
// creates a cursor, reads pages sequentially until the server reports no more,
// and returns every record in server order together with the total count
// reported at creation:
//
//	POST   /k/v1/records/cursor.json   create
//	GET    /k/v1/records/cursor.json   page 1..n (next=true ... next=false)
//	DELETE /k/v1/records/cursor.json   only when a page fails
//
// When a page fails, the cursor is deleted before returning and the page
// error is returned unchanged. The outcome of that delete is ignored.
// Nothing is retried at this layer; retries belong to the transport.
//
// # Example
//
//	httpClient, err := transport.NewClient(&transport.Config{
//		BaseURL: "https://example.cybozu.com",
//		Headers: map[string]string{"X-Cybozu-API-Token": token},
//	})
//	if err != nil {
//		return err
//	}
//	records := record.NewClient(httpClient, record.ClientConfig{})
//	all, err := records.GetAllRecordsWithCursor(ctx, record.GetAllRecordsWithCursorParams{
//		App:   "12",
//		Query: `status = "open"`,
//	})
package record
