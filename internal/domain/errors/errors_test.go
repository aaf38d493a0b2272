package errors

import (
	stdErrors "errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"rate unavailable", ErrRateUnavailable},
		{"coupon expired", ErrCouponExpired},
		{"coupon not applicable", ErrCouponNotApplicable},
		{"coupon already applied", ErrCouponAlreadyApplied},
		{"empty basket", ErrEmptyBasket},
		{"invalid amount", ErrInvalidAmount},
		{"event target missing", ErrEventTargetMissing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}
