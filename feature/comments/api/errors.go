package api

import "errors"

var (
	// ErrNotFound reports that upstream has no record for the requested ID.
	// For pagination it is the expected end-of-sequence signal, not a failure.
	ErrNotFound = errors.New("not found upstream")

	// ErrAuthFailed reports that the token handshake was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrUnexpectedStatus reports a non-200 response outside the documented
	// 404/429 contract.
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
)
