package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied pair matches neither
	// the stored accounts nor the built-in demo pairs. The message is shown to
	// end users verbatim.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailAndPasswordRequired = errors.New("email and password required")

	// ErrInvalidSession is returned when a bearer token does not resolve to a
	// live session (expired, revoked, or garbage).
	ErrInvalidSession = errors.New("invalid session")

	// ErrForbidden is returned when the caller's role does not permit the
	// operation, including any mutation attempted by a developer account.
	ErrForbidden = errors.New("forbidden")

	ErrProjectNotFound = errors.New("project not found")
	ErrRoomNotFound    = errors.New("room not found")

	// ErrExportUnavailable is returned when object storage is not configured.
	ErrExportUnavailable = errors.New("visual export is not configured")

	// ErrNothingToExport is returned when the requested visual has not been
	// generated yet.
	ErrNothingToExport = errors.New("no visual to export")
)
