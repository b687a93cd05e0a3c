// Package api exposes the account and access-control core over HTTP.
//
// This package provides:
//   - Registration, confirmation, login, logout and password endpoints
//   - Project and view management for logged-in owners
//   - View links and the combined access context for the renderer
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// Every response body is an outcome envelope:
//
//	{"status": "ok" | "error" | "warning", "message": "...", "data": ...}
//
// # Credentials
//
// The session token travels in the session cookie or an
// "Authorization: Bearer" header. View credentials travel in the view
// cookie as "name|token". Cookie names come from the api.cookies config.
package api
