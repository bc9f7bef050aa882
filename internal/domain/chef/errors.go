package chef

import "errors"

var (
	ErrMissingName = errors.New("chef name is required")
)
