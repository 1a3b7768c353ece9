/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package idputil

import (
	"fmt"
)

// UnexpectedResponseError represents an error that occurs when an unexpected HTTP response is received.
type UnexpectedResponseError struct {
	StatusCode int
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected HTTP code %d", e.StatusCode)
}
