package types

import "errors"

var (
	ErrInvalidUsername = errors.New("username must be 1-50 characters, alphanumeric + underscore/hyphen only")
)
