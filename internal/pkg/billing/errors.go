package billing

import "errors"

// Typed errors returned by the engine. Controllers map these to HTTP
// statuses; none are retried here.
var (
	// ErrNotFound is returned when a table, session or subscription does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredential is returned when the presented QR token does not
	// match the table's token.
	ErrInvalidCredential = errors.New("qr code does not match table")

	// ErrResourceBusy is returned when the table is occupied, including when
	// a concurrent start wins the compare-and-set.
	ErrResourceBusy = errors.New("table is already occupied")

	// ErrResourceDisabled is returned when a start is attempted on a disabled table.
	ErrResourceDisabled = errors.New("table is disabled")

	// ErrUserAlreadyInSession is returned when the user or subscription
	// already holds an open session.
	ErrUserAlreadyInSession = errors.New("an active session already exists")

	// ErrInsufficientFunds is returned when the credit balance is below one
	// hour at the table's rate. The gate uses the hourly rate because the
	// actual charge is unknown until close.
	ErrInsufficientFunds = errors.New("credit balance below hourly rate")

	// ErrSubscriptionNotActive is returned for expired or cancelled subscriptions.
	ErrSubscriptionNotActive = errors.New("subscription is not active")

	// ErrSubscriptionExhausted is returned when no hours remain.
	ErrSubscriptionExhausted = errors.New("subscription has no remaining hours")

	// ErrUnauthorized is returned when the caller does not own the session
	// or subscription.
	ErrUnauthorized = errors.New("caller does not own this resource")

	// ErrSessionAlreadyClosed signals a lost close race. It is an idempotent
	// outcome, not a failure: the service translates it into a result with
	// AlreadyClosed set.
	ErrSessionAlreadyClosed = errors.New("session is already closed")
)
