package commitment

import "errors"

// Domain errors for commitment construction

var (
	ErrMissingMealName = errors.New("commitment must carry a meal name")
)
