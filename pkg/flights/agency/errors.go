// Package agency provides booking-site source adapters.
package agency

import "errors"

var (
	// ErrNoRequestID indicates a proposal response without a request ID.
	ErrNoRequestID = errors.New("no requestId in response")
)
