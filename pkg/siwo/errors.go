package siwo

import (
	"errors"
	"fmt"
)

// ErrInvalidSeed is matched by every InvalidSeedError
var ErrInvalidSeed = errors.New("invalid seed")

// InvalidSeedError reports a seed vertex that is not part of the graph
type InvalidSeedError struct {
	Seed int
}

func (e *InvalidSeedError) Error() string {
	return fmt.Sprintf("invalid seed %d: vertex not in graph", e.Seed)
}

// Is lets errors.Is(err, ErrInvalidSeed) succeed
func (e *InvalidSeedError) Is(target error) bool {
	return target == ErrInvalidSeed
}
