// Package client contains the console's transport to the admin REST API
// and the local database bootstrap.
//
// # Overview
//
// HTTPClient is the single choke point for network calls. It:
//  1. Sends POST by default, because the API serves reads over POST too.
//  2. Attaches "Authorization: Bearer <token>" only when the TokenSource
//     has a token.
//  3. Encodes a Body once, as JSON or multipart, so callers never pick
//     content types themselves.
//  4. Normalizes failures in a fixed order: field errors, then a non-2xx
//     HTTP status, then a failing status inside the envelope.
//
// Download is the binary path used for booking exports; it skips envelope
// parsing on success.
//
// # Error Handling
//
// Failures are typed: *ValidationError, *StatusError, *BusinessError and
// *TransportError. Transport failures match ErrUnavailable and 401s match
// ErrUnauthorized under errors.Is. Message extracts the text to show.
//
// InitDatabase and RunMigrations open the SQLite file holding the session
// slots and apply the embedded goose migrations.
package client
