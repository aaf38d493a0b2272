package usecase

import "time"

// SetCheckoutNow overrides the checkout clock in external tests.
func SetCheckoutNow(uc *CheckoutUseCase, now func() time.Time) {
	uc.now = now
}
