package service

import "errors"

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("document not found")
	ErrReaderNil          = errors.New("reader is nil")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
