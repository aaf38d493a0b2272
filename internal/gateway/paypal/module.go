package paypal

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/paperdesk/papermart/internal/config"
	"github.com/paperdesk/papermart/internal/usecase"
)

// Module exposes the PayPal client to the fx graph.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Provide(
		func(c *Client) Verifier { return c },
		func(c *Client) usecase.SubscriptionGateway { return c },
	),
)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*Client, error) {
	return NewClient(p.Config.PayPal.BaseURL, p.Config.PayPal.ClientID, p.Config.PayPal.Secret, p.Logger)
}
