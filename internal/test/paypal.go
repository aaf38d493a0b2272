package test

import (
	"context"
	"encoding/json"

	"github.com/paperdesk/papermart/internal/gateway/paypal"
)

// VerifierStub substitutes the webhook signature verifier. The zero value
// accepts every delivery.
type VerifierStub struct {
	Err   error
	Calls []string
}

func (s *VerifierStub) VerifyWebhookSignature(_ context.Context, webhookID string, _ paypal.WebhookHeaders, _ json.RawMessage) error {
	s.Calls = append(s.Calls, webhookID)
	return s.Err
}

var _ paypal.Verifier = (*VerifierStub)(nil)
