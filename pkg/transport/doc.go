// Package transport provides the HTTP/JSON client used to reach the kintone REST API.
//
// # Overview
//
// Client exposes four verbs, Get, Post, Put and Delete, each taking an API path,
// request params and a pointer to decode the response into. It is the
// production implementation of record.HTTPClient and knows nothing about
// records: paths and payloads are built by the caller.
//
// # Request Encoding
//
//   - GET params are flattened into the query string. Struct fields use their
//     json tag names; slices become indexed keys (fields[0]=a&fields[1]=b).
//   - GET URLs longer than 4096 characters are sent as POST with
//     X-HTTP-Method-Override: GET and the params as a JSON body.
//   - POST, PUT and DELETE params are sent as a JSON body.
//   - Configured headers (for example X-Cybozu-API-Token) are added to every request.
//
// # Error Handling
//
//   - Non-2xx responses return *Error, carrying the kintone error code, request
//     id, message and per-field messages when the body contains them.
//   - Connection failures and non-2xx responses both match ErrRequestFailed.
//   - Decode failures are wrapped with "failed to decode response".
//
// # Retries
//
// Only 429 and 503 responses are retried, since the server did not process
// those requests. Retries use exponential backoff starting at RetryDelay and
// stop after MaxRetries or when the context is done. Other failures are
// returned immediately: a cursor page request, for example, must never be
// replayed once the server has seen it.
package transport
