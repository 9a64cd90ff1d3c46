package interfaces

import "errors"

// Common interface errors used across components
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)
