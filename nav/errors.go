package nav

import "errors"

// Sentinel errors reported by grid construction and path searches. A
// search that terminates without reaching the goal is not an error; it
// returns an empty path.
var (
	ErrBadExtent      = errors.New("invalid grid extent")
	ErrOutOfBounds    = errors.New("coordinate out of bounds")
	ErrUnwalkable     = errors.New("coordinate not walkable")
	ErrIterationLimit = errors.New("iteration limit exceeded")
)
