package match

import (
	"errors"
	"fmt"
)

// ErrUnknownPolicy is returned when no policy is registered under a name.
var ErrUnknownPolicy = errors.New("unknown policy")

// FormatMismatch reports a page whose rows do not fit the policy. The page
// is not committed.
type FormatMismatch struct {
	Page   int
	State  State
	Row    int
	Reason string
	Err    error
}

func (e *FormatMismatch) Error() string {
	msg := fmt.Sprintf("format mismatch on page %d, row %d (%s): %s", e.Page, e.Row, e.State, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatMismatch) Unwrap() error {
	return e.Err
}
