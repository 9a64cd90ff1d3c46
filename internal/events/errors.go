package events

import "errors"

var (
	ErrMalformedPayload = errors.New("malformed event payload")
)
