package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/paperdesk/papermart/internal/config"
	"github.com/paperdesk/papermart/internal/domain/repository"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.Factory { return s },
		func(s *Storage) repository.CustomerRepository { return s.Customers() },
		func(s *Storage) repository.CatalogRepository { return s.Catalog() },
		func(s *Storage) repository.CouponRepository { return s.Coupons() },
		func(s *Storage) repository.BasketRepository { return s.Baskets() },
		func(s *Storage) repository.OrderRepository { return s.Orders() },
		func(s *Storage) repository.PaymentRepository { return s.Payments() },
		func(s *Storage) repository.SubscriptionRepository { return s.Subscriptions() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
