package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrDriverNotFound       = errors.New("driver not found")
	ErrInvalidActivity      = errors.New("invalid activity")
	ErrInvalidTimeRange     = errors.New("invalid time range")
	ErrSleepAlreadyActive   = errors.New("sleep session already active")
	ErrNoActiveSleep        = errors.New("no active sleep session")
	ErrDatabaseUnconfigured = errors.New("database not configured")
)
