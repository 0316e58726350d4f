package config

import "errors"

// ErrBadPlan indicates a plan that is not valid JSON or names an entry the
// plan surface cannot express.
var ErrBadPlan = errors.New("config: bad plan")
