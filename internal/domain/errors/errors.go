package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRateUnavailable signals no rate rule covers the requested scope.
	// An expected outcome meaning the service is currently unavailable,
	// not a fault.
	ErrRateUnavailable = errors.New("rate unavailable")

	ErrCouponExpired        = errors.New("coupon expired")
	ErrCouponNotApplicable  = errors.New("coupon not applicable")
	ErrCouponAlreadyApplied = errors.New("coupon already applied")

	ErrEmptyBasket   = errors.New("basket is empty")
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrEventTargetMissing marks a verified event whose order or
	// subscription is not visible yet. Transient: the gateway should
	// redeliver once the prerequisite event has arrived.
	ErrEventTargetMissing = errors.New("event target not found")
)
