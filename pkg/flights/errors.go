// Package flights provides the flight search data model, the source
// adapter contract and the fare normalizer.
package flights

import "errors"

var (
	// ErrInvalidParams indicates invalid search parameters.
	ErrInvalidParams = errors.New("invalid search parameters")
	// ErrRouteNotSupported indicates that a source does not serve the requested route or date.
	ErrRouteNotSupported = errors.New("route not supported by source")
	// ErrMalformedListing indicates a raw listing missing or breaking required fields.
	ErrMalformedListing = errors.New("malformed listing")
	// ErrUnknownCurrency indicates a currency the normalizer has no conversion for.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrUnknownSource indicates a source name with no registered factory.
	ErrUnknownSource = errors.New("unknown source")
	// ErrUnexpectedStatus indicates an unexpected HTTP status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")
	// ErrInvalidResponse indicates an unparsable response payload.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrInvalidConfig indicates that a source configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrSearchIncomplete indicates a polled search that never completed.
	ErrSearchIncomplete = errors.New("search did not complete")
)
