package repository

import "errors"

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateName  = errors.New("name already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrNotFound       = errors.New("not found")
)
