package model

import "errors"

var (
	// ErrNotFound signals that a referenced account or report does not
	// exist (or vanished between read and act).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a uniqueness violation on insert, e.g. a
	// taken handle.
	ErrAlreadyExists = errors.New("already exists")
)
