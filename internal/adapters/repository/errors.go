package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrRecordNotFound = errors.New("score record not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrEventNotFound  = errors.New("event not found")
	ErrDuplicateID    = errors.New("duplicate record id")
	ErrBadTimestamp   = errors.New("unsupported timestamp representation")
)
