package apperr

import "errors"

// ErrInvalid is returned when the inbound request fails validation (HTTP 400).
var ErrInvalid = errors.New("invalid request")

// ErrUpstreamUnavailable indicates that a collaborator call failed, timed out
// or returned an unexpected shape (HTTP 500).
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ErrAssignmentFailed indicates that the driver-assignment service did not
// produce a delivery id (HTTP 500).
var ErrAssignmentFailed = errors.New("driver assignment failed")

// ErrBrokerUnavailable indicates that no broker connection could be
// established after the configured dial attempts (HTTP 503; the next request
// retries the connection).
var ErrBrokerUnavailable = errors.New("broker unavailable")
