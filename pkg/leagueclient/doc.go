// Package leagueclient is a typed Go client for the Ghost League platform
// API.
//
// Client wraps the REST surface with an explicitly constructed HTTP client.
// Manager layers the auth state machine on top: every network action is an
// explicit started -> success|fail transition over a sealed AuthEvent type,
// at most one request is in flight per manager, and the manager is the sole
// owner of token persistence. UI layers observe the derived State and never
// touch the token directly.
package leagueclient
