package eventlog

import "errors"

var (
	// ErrJournalClosed is returned when using a closed journal
	ErrJournalClosed = errors.New("event journal is closed")

	// ErrUnknownDriver is returned for a driver other than sqlite or postgres
	ErrUnknownDriver = errors.New("unknown journal driver")

	// ErrRunNotFound is returned when a run id has no row
	ErrRunNotFound = errors.New("run not found")
)
