package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/usecase"
)

// ErrVerificationFailed indicates the gateway rejected the webhook signature.
var ErrVerificationFailed = errors.New("webhook signature verification failed")

// WebhookHeaders carries the transmission headers PayPal attaches to every
// webhook delivery.
type WebhookHeaders struct {
	TransmissionID   string
	TransmissionTime string
	TransmissionSig  string
	CertURL          string
	AuthAlgo         string
}

// Verifier checks webhook deliveries against the gateway's verification API.
type Verifier interface {
	VerifyWebhookSignature(ctx context.Context, webhookID string, headers WebhookHeaders, event json.RawMessage) error
}

// Client talks to the PayPal REST API: client-credentials token exchange,
// webhook signature verification, and subscription resource fetches.
type Client struct {
	baseURL    *url.URL
	clientID   string
	secret     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a PayPal REST client with default timeout.
func NewClient(baseURL, clientID, secret string, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse paypal url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("paypal url must be absolute")
	}
	return &Client{
		baseURL:  parsed,
		clientID: clientID,
		secret:   secret,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken performs the client-credentials exchange. Tokens are not
// cached: webhook traffic is low-volume and a stale token would surface as
// a spurious fatal error on the event.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	endpoint := c.endpoint("/v1/oauth2/token")
	body := strings.NewReader("grant_type=client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		c.logger.Error("paypal token exchange failed", slog.Int("status", resp.StatusCode), slog.String("body", string(payload)))
		return "", fmt.Errorf("token exchange: %s", resp.Status)
	}

	var data tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned empty token")
	}
	return data.AccessToken, nil
}

type verifyRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// VerifyWebhookSignature submits the delivery to the verification endpoint.
// A non-SUCCESS verdict returns ErrVerificationFailed; transport and token
// failures return their own errors so callers can separate the two classes.
func (c *Client) VerifyWebhookSignature(ctx context.Context, webhookID string, headers WebhookHeaders, event json.RawMessage) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(verifyRequest{
		AuthAlgo:         headers.AuthAlgo,
		CertURL:          headers.CertURL,
		TransmissionID:   headers.TransmissionID,
		TransmissionSig:  headers.TransmissionSig,
		TransmissionTime: headers.TransmissionTime,
		WebhookID:        webhookID,
		WebhookEvent:     event,
	})
	if err != nil {
		return err
	}

	endpoint := c.endpoint("/v1/notifications/verify-webhook-signature")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verify webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("paypal webhook verification failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return fmt.Errorf("verify webhook: %s", resp.Status)
	}

	var data verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Errorf("decode verification response: %w", err)
	}
	if data.VerificationStatus != "SUCCESS" {
		return ErrVerificationFailed
	}
	return nil
}

type subscriptionResponse struct {
	ID          string `json:"id"`
	PlanID      string `json:"plan_id"`
	StartTime   string `json:"start_time"`
	BillingInfo struct {
		NextBillingTime string `json:"next_billing_time"`
		CycleExecutions []struct {
			TenureType      string `json:"tenure_type"`
			CyclesRemaining int    `json:"cycles_remaining"`
		} `json:"cycle_executions"`
	} `json:"billing_info"`
}

// GetSubscription fetches the full subscription resource.
func (c *Client) GetSubscription(ctx context.Context, externalID string) (*usecase.SubscriptionResource, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.endpoint(path.Join("/v1/billing/subscriptions", externalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("paypal subscription fetch failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("fetch subscription: %s", resp.Status)
	}

	var data subscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode subscription response: %w", err)
	}

	resource := &usecase.SubscriptionResource{
		ExternalID: data.ID,
		PlanID:     data.PlanID,
	}
	if data.StartTime != "" {
		if resource.StartTime, err = time.Parse(time.RFC3339, data.StartTime); err != nil {
			return nil, fmt.Errorf("parse start time: %w", err)
		}
	}
	if data.BillingInfo.NextBillingTime != "" {
		if resource.NextBillingTime, err = time.Parse(time.RFC3339, data.BillingInfo.NextBillingTime); err != nil {
			return nil, fmt.Errorf("parse next billing time: %w", err)
		}
	}
	for _, cycle := range data.BillingInfo.CycleExecutions {
		resource.Cycles = append(resource.Cycles, model.BillingCycle{
			TenureType:      cycle.TenureType,
			CyclesRemaining: cycle.CyclesRemaining,
		})
	}
	return resource, nil
}

func (c *Client) endpoint(p string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, p)
	return endpoint.String()
}
