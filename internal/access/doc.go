// Package access turns request credentials into what the renderer may
// show.
//
// A request can carry a session token, a view credential ("name|token"),
// both or neither. The session is tried first and grants read-write access
// to the user's active project. Failing that, the view credential grants
// read-only access to one view's project. Otherwise the caller's fallback
// context is used.
//
// Every decision is reported to an optional Recorder.
package access
