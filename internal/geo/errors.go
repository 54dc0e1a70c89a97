// SPDX-License-Identifier: MIT

package geo

import (
	"errors"
	"fmt"
)

// ErrUnresolvable is the sentinel for address-lookup failures. Callers use
// errors.Is at the boundary; the upload is aborted when resolution fails.
var ErrUnresolvable = errors.New("geo: address could not be resolved")

// LookupError wraps ErrUnresolvable with context from the failing call.
type LookupError struct {
	Operation string
	Address   string
	Status    int
	Err       error
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("geo: %s for %s: %v", e.Operation, e.Address, ErrUnresolvable)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *LookupError) Unwrap() error {
	return ErrUnresolvable
}
