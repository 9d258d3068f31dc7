package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrTranslation = errors.New("translation failed")
	ErrInvalid     = errors.New("invalid input")
)
