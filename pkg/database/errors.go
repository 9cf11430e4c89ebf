package database

import "errors"

var (
	// ErrNotReady is returned by Ping before the connection is usable.
	ErrNotReady = errors.New("database not ready")
	// ErrUnsupportedDialect wraps unknown dialect names.
	ErrUnsupportedDialect = errors.New("unsupported dialect")
)
