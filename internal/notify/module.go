package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/paperdesk/papermart/internal/config"
	"github.com/paperdesk/papermart/internal/usecase"
)

// Module wires the notification dispatcher into the fx graph. Start and stop
// hooks live in the app module alongside the HTTP server.
var Module = fx.Options(
	fx.Provide(
		func(logger *slog.Logger) Sender { return NewLogSender(logger) },
		newDispatcher,
		func(d *Dispatcher) usecase.OrderNotifier { return d },
	),
)

type dispatcherParams struct {
	fx.In

	Sender Sender
	Config *config.Config
	Logger *slog.Logger
}

func newDispatcher(p dispatcherParams) *Dispatcher {
	return NewDispatcher(p.Sender, p.Config.NotifyQueueSize, p.Config.NotifyWorkers, p.Logger)
}
