// Package mailerr provides centralized error definitions for the Yahoo
// Mail MCP server. Callers classify failures with errors.Is; the MCP
// layer maps each kind to a tool-facing message.
package mailerr

import "errors"

// Validation errors. These are raised before any network I/O.
var (
	// ErrMissingInput indicates a required argument was absent.
	ErrMissingInput = errors.New("missing input")

	// ErrWrongShape indicates the argument was not a sequence of values.
	ErrWrongShape = errors.New("expected a list of message UIDs")

	// ErrEmptyBatch indicates an empty UID list was supplied.
	ErrEmptyBatch = errors.New("empty UID list")

	// ErrInvalidIdentifier indicates one or more UIDs were not positive integers.
	ErrInvalidIdentifier = errors.New("invalid UID")
)

// Connection errors.
var (
	// ErrAuthFailed indicates the IMAP or SMTP server rejected the credentials.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrConnectionFailure indicates the server could not be reached.
	ErrConnectionFailure = errors.New("connection failed")

	// ErrConnectionTimeout indicates session establishment exceeded its
	// deadline. Often means the remote session was idle or the host was
	// suspended; the call is safe to retry.
	ErrConnectionTimeout = errors.New("connection timed out")
)

// Mailbox errors.
var (
	// ErrFolderUnavailable indicates the folder does not exist or could
	// not be opened in the required mode.
	ErrFolderUnavailable = errors.New("folder unavailable")

	// ErrIdentifierNotFound indicates a requested UID does not exist in
	// the selected folder.
	ErrIdentifierNotFound = errors.New("message UID not found")
)
