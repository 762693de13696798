package pricefeed

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig matches every *InvalidConfigError via errors.Is.
var ErrInvalidConfig = errors.New("pricefeed: invalid config")

// InvalidConfigError is returned by NewSimulator when the initial instrument set
// or an option cannot produce a valid feed.
type InvalidConfigError struct {
	Field  string
	Symbol string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("pricefeed: invalid %s for %q: %s", e.Field, e.Symbol, e.Reason)
	}
	return fmt.Sprintf("pricefeed: invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
