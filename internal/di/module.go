package di

import (
	"go.uber.org/fx"

	"github.com/paperdesk/papermart/internal/app"
	"github.com/paperdesk/papermart/internal/config"
	"github.com/paperdesk/papermart/internal/gateway/paypal"
	"github.com/paperdesk/papermart/internal/logger"
	"github.com/paperdesk/papermart/internal/notify"
	"github.com/paperdesk/papermart/internal/pkg/auth"
	"github.com/paperdesk/papermart/internal/server/http/handlers"
	"github.com/paperdesk/papermart/internal/server/http/router"
	"github.com/paperdesk/papermart/internal/storage/postgres"
	"github.com/paperdesk/papermart/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		paypal.Module,
		notify.Module,
		usecase.Module,
		fx.Provide(func(f *app.BillingFacade) handlers.BillingFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
