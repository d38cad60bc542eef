package arena

import (
	"errors"
	"fmt"
)

// ParseError reports a malformed arena description.
type ParseError struct {
	Field  string // which part of the description failed: boundary, polygon, position, booster, ...
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	input := e.Input
	if len(input) > 40 {
		input = input[:37] + "..."
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, input, e.Reason)
}

// IsParseError returns true if err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
