package feed

import "errors"

// Errors
var (
	ErrEmptyRecord = errors.New("empty record")
	ErrUnknownTag  = errors.New("unknown instruction tag")
	ErrShortRecord = errors.New("short record")
	ErrInvalidSide = errors.New("invalid side")
)
