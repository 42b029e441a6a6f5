// Package api provides the HTTP client for the rental marketplace API.
//
// # Overview
//
// Every call is JSON over a configured base URL. Requests carry
// `Accept: application/json`, a per-call `X-Request-ID`, and, when a
// TokenSource yields a token, `Authorization: Bearer <token>`. Bodies are
// JSON except photo uploads, which are multipart. A 204 or empty body
// decodes to the zero value.
//
// # Error Taxonomy
//
// Failures are returned as *Error with a Kind:
//
//   - KindNetwork: transport failure, no HTTP status
//   - KindClient: 400/422, with per-field messages in Fields when present
//   - KindAuthRequired: 401
//   - KindForbidden: 403
//   - KindNotFound: 404
//   - KindConflict: 409
//   - KindServer: 5xx
//
// A cancelled context is returned as-is (context.Canceled) and is never
// wrapped in *Error. IsCancelled filters it before any display path, and
// Describe renders everything else as an inline message.
//
// # Usage Example
//
//	client, err := api.NewClient(cfg.APIBaseURL, api.WithTokenSource(sess))
//	if err != nil {
//		return err
//	}
//	page, err := client.ListListings(ctx, query.Encode(filter))
package api
