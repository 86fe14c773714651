package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNoDraft          = errors.New("no session draft")
	ErrAggregatorClosed = errors.New("scroll session aggregator is closed")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrSourceNotFound   = errors.New("event source is not configured")
)
