package scan

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid scan request")
	ErrInvalidPolicy  = errors.New("invalid policy script")
	ErrTimeout        = errors.New("scan timed out")
)
