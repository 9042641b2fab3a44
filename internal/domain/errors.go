package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
)
