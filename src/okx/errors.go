package okx

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthMissing is returned before any network call when a private
	// endpoint is hit without the full key/secret/passphrase triple.
	ErrAuthMissing = errors.New("okx: missing api credentials")

	// ErrRateLimited maps HTTP 429.
	ErrRateLimited = errors.New("okx: rate limited")

	// ErrMissingOrderID is returned by cancel/amend when neither an
	// order id nor an algo id was supplied.
	ErrMissingOrderID = errors.New("okx: cancel/amend requires ordId or algoId")
)

// NetworkError is a transport-level failure (connection refused, DNS,
// timeout), kept distinct from API errors so callers can decide retry
// eligibility.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("okx: network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response carrying the exchange's {code,msg}
// envelope, or the HTTP status line when the body was not parseable.
type APIError struct {
	HTTPStatus int
	Code       string
	Msg        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("okx: api error code=%s msg=%s (http %d)", e.Code, e.Msg, e.HTTPStatus)
}

// OrderRejectedError is a 200-level response whose per-item status code
// reports a rejection.
type OrderRejectedError struct {
	Code string
	Msg  string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("okx: order rejected code=%s msg=%s", e.Code, e.Msg)
}
