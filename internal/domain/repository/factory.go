package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Customers() CustomerRepository
	Catalog() CatalogRepository
	Coupons() CouponRepository
	Baskets() BasketRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Subscriptions() SubscriptionRepository
}
