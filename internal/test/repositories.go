package test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/domain/repository"
)

// CustomerRepositoryStub stores customers in-memory for tests.
type CustomerRepositoryStub struct {
	Customers map[string]*model.Customer
	ByID      map[int64]*model.Customer
	Next      int64
	Err       error
}

// NewCustomerRepositoryStub constructs stub repository with initialized maps.
func NewCustomerRepositoryStub() *CustomerRepositoryStub {
	return &CustomerRepositoryStub{
		Customers: make(map[string]*model.Customer),
		ByID:      make(map[int64]*model.Customer),
		Next:      1,
	}
}

// Create registers a customer unless already present or stub has explicit error.
func (s *CustomerRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.Customer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.Customers[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	customer := &model.Customer{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Customers[login] = customer
	s.ByID[customer.ID] = customer
	return customer, nil
}

// GetByLogin fetches a customer by login or returns not found.
func (s *CustomerRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.Customer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if customer, ok := s.Customers[login]; ok {
		return customer, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches a customer by identifier or returns not found.
func (s *CustomerRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if customer, ok := s.ByID[id]; ok {
		return customer, nil
	}
	return nil, domainErrors.ErrNotFound
}

// rateScope keys a rate rule by its exact lookup scope.
type rateScope struct {
	ServiceTypeID uuid.UUID
	TurnaroundID  uuid.UUID
	LevelID       uuid.UUID
	Wildcard      bool
}

// CatalogRepositoryStub serves catalog entities and rate rules from maps.
type CatalogRepositoryStub struct {
	Rules        map[rateScope]*model.RateRule
	Surcharges   map[[2]uuid.UUID]*model.TierSurcharge
	ServiceTypes map[uuid.UUID]*model.ServiceType
	Turnarounds  map[uuid.UUID]*model.Turnaround
	Levels       map[uuid.UUID]*model.Level
	Tiers        map[uuid.UUID]*model.Tier
	Err          error
}

// NewCatalogRepositoryStub constructs stub catalog with initialized maps.
func NewCatalogRepositoryStub() *CatalogRepositoryStub {
	return &CatalogRepositoryStub{
		Rules:        make(map[rateScope]*model.RateRule),
		Surcharges:   make(map[[2]uuid.UUID]*model.TierSurcharge),
		ServiceTypes: make(map[uuid.UUID]*model.ServiceType),
		Turnarounds:  make(map[uuid.UUID]*model.Turnaround),
		Levels:       make(map[uuid.UUID]*model.Level),
		Tiers:        make(map[uuid.UUID]*model.Tier),
	}
}

// AddRule registers a rate rule and its catalog entities for lookup.
func (s *CatalogRepositoryStub) AddRule(rule *model.RateRule) {
	scope := rateScope{ServiceTypeID: rule.ServiceTypeID, TurnaroundID: rule.TurnaroundID, Wildcard: rule.LevelID == nil}
	if rule.LevelID != nil {
		scope.LevelID = *rule.LevelID
	}
	s.Rules[scope] = rule
}

// AddSurcharge registers a tier surcharge.
func (s *CatalogRepositoryStub) AddSurcharge(surcharge *model.TierSurcharge) {
	s.Surcharges[[2]uuid.UUID{surcharge.RateRuleID, surcharge.TierID}] = surcharge
}

func (s *CatalogRepositoryStub) RateRule(ctx context.Context, serviceTypeID, turnaroundID uuid.UUID, levelID *uuid.UUID) (*model.RateRule, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	scope := rateScope{ServiceTypeID: serviceTypeID, TurnaroundID: turnaroundID, Wildcard: levelID == nil}
	if levelID != nil {
		scope.LevelID = *levelID
	}
	if rule, ok := s.Rules[scope]; ok {
		return rule, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *CatalogRepositoryStub) TierSurcharge(ctx context.Context, rateRuleID, tierID uuid.UUID) (*model.TierSurcharge, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if surcharge, ok := s.Surcharges[[2]uuid.UUID{rateRuleID, tierID}]; ok {
		return surcharge, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *CatalogRepositoryStub) ServiceType(ctx context.Context, id uuid.UUID) (*model.ServiceType, error) {
	if st, ok := s.ServiceTypes[id]; ok {
		return st, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *CatalogRepositoryStub) Turnaround(ctx context.Context, id uuid.UUID) (*model.Turnaround, error) {
	if ta, ok := s.Turnarounds[id]; ok {
		return ta, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *CatalogRepositoryStub) Level(ctx context.Context, id uuid.UUID) (*model.Level, error) {
	if lvl, ok := s.Levels[id]; ok {
		return lvl, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *CatalogRepositoryStub) Tier(ctx context.Context, id uuid.UUID) (*model.Tier, error) {
	if tier, ok := s.Tiers[id]; ok {
		return tier, nil
	}
	return nil, domainErrors.ErrNotFound
}

// CouponRepositoryStub stores coupons in-memory for tests.
type CouponRepositoryStub struct {
	Coupons    map[string]*model.Coupon
	FirstTimerCoupon *model.Coupon
	Err        error
}

// NewCouponRepositoryStub constructs stub repository with initialized maps.
func NewCouponRepositoryStub() *CouponRepositoryStub {
	return &CouponRepositoryStub{Coupons: make(map[string]*model.Coupon)}
}

func (s *CouponRepositoryStub) Create(ctx context.Context, coupon *model.Coupon) error {
	if s.Err != nil {
		return s.Err
	}
	if _, exists := s.Coupons[coupon.Code]; exists {
		return domainErrors.ErrAlreadyExists
	}
	s.Coupons[coupon.Code] = coupon
	return nil
}

func (s *CouponRepositoryStub) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if coupon, ok := s.Coupons[code]; ok && coupon.Active {
		return coupon, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *CouponRepositoryStub) CodeExists(ctx context.Context, code string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.Coupons[code]
	return ok, nil
}

func (s *CouponRepositoryStub) FirstTimer(ctx context.Context) (*model.Coupon, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.FirstTimerCoupon != nil && s.FirstTimerCoupon.Active {
		return s.FirstTimerCoupon, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *CouponRepositoryStub) BestByMinimum(ctx context.Context, subtotal decimal.Decimal) (*model.Coupon, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var best *model.Coupon
	for _, coupon := range s.Coupons {
		if !coupon.Active || coupon.Kind != model.CouponKindRegular || coupon.Minimum == nil {
			continue
		}
		if coupon.Minimum.GreaterThan(subtotal) {
			continue
		}
		if best == nil || coupon.Minimum.GreaterThan(*best.Minimum) {
			best = coupon
		}
	}
	if best == nil {
		return nil, domainErrors.ErrNotFound
	}
	return best, nil
}

func (s *CouponRepositoryStub) Deactivate(ctx context.Context, id uuid.UUID) error {
	if s.Err != nil {
		return s.Err
	}
	for _, coupon := range s.Coupons {
		if coupon.ID == id {
			coupon.Active = false
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// BasketRepositoryStub keeps a single basket per owner in memory.
type BasketRepositoryStub struct {
	Baskets map[int64]*model.Basket
	Coupons map[uuid.UUID]*model.Coupon
	Err     error
}

// NewBasketRepositoryStub constructs stub repository with initialized maps.
func NewBasketRepositoryStub() *BasketRepositoryStub {
	return &BasketRepositoryStub{
		Baskets: make(map[int64]*model.Basket),
		Coupons: make(map[uuid.UUID]*model.Coupon),
	}
}

func (s *BasketRepositoryStub) GetOrCreate(ctx context.Context, ownerID int64) (*model.Basket, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if basket, ok := s.Baskets[ownerID]; ok {
		return basket, nil
	}
	basket := &model.Basket{ID: uuid.New(), OwnerID: ownerID, CreatedAt: time.Now()}
	s.Baskets[ownerID] = basket
	return basket, nil
}

func (s *BasketRepositoryStub) GetByOwner(ctx context.Context, ownerID int64) (*model.Basket, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if basket, ok := s.Baskets[ownerID]; ok {
		return basket, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *BasketRepositoryStub) UpsertLine(ctx context.Context, basketID uuid.UUID, line *model.BasketLine) (*model.BasketLine, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	basket := s.byID(basketID)
	if basket == nil {
		return nil, domainErrors.ErrNotFound
	}
	line.BasketID = basketID
	for i := range basket.Lines {
		if basket.Lines[i].ID == line.ID {
			basket.Lines[i] = *line
			return line, nil
		}
	}
	basket.Lines = append(basket.Lines, *line)
	return line, nil
}

func (s *BasketRepositoryStub) RemoveLine(ctx context.Context, basketID, lineID uuid.UUID) error {
	if s.Err != nil {
		return s.Err
	}
	basket := s.byID(basketID)
	if basket == nil {
		return domainErrors.ErrNotFound
	}
	for i := range basket.Lines {
		if basket.Lines[i].ID == lineID {
			basket.Lines = append(basket.Lines[:i], basket.Lines[i+1:]...)
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

func (s *BasketRepositoryStub) Clear(ctx context.Context, basketID uuid.UUID) error {
	if s.Err != nil {
		return s.Err
	}
	basket := s.byID(basketID)
	if basket == nil {
		return domainErrors.ErrNotFound
	}
	basket.Lines = nil
	basket.Coupon = nil
	return nil
}

func (s *BasketRepositoryStub) AttachCoupon(ctx context.Context, basketID uuid.UUID, couponID *uuid.UUID) error {
	if s.Err != nil {
		return s.Err
	}
	basket := s.byID(basketID)
	if basket == nil {
		return domainErrors.ErrNotFound
	}
	if couponID == nil {
		basket.Coupon = nil
		return nil
	}
	basket.Coupon = s.Coupons[*couponID]
	return nil
}

func (s *BasketRepositoryStub) AddAttachment(ctx context.Context, lineID uuid.UUID, attachment *model.Attachment) error {
	if s.Err != nil {
		return s.Err
	}
	for _, basket := range s.Baskets {
		for i := range basket.Lines {
			if basket.Lines[i].ID == lineID {
				basket.Lines[i].Attachments = append(basket.Lines[i].Attachments, *attachment)
				return nil
			}
		}
	}
	return domainErrors.ErrNotFound
}

func (s *BasketRepositoryStub) byID(basketID uuid.UUID) *model.Basket {
	for _, basket := range s.Baskets {
		if basket.ID == basketID {
			return basket
		}
	}
	return nil
}

// OrderRepositoryStub allows tests to customize behaviour.
type OrderRepositoryStub struct {
	CreateFromBasketFn func(context.Context, uuid.UUID, *model.Order) (*model.Order, error)
	HasPaidFn          func(context.Context, int64) (bool, error)

	Orders   map[int64]*model.Order
	HasPaid  map[int64]bool
	NextID   int64
	Consumed []uuid.UUID
	Err      error
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders:  make(map[int64]*model.Order),
		HasPaid: make(map[int64]bool),
		NextID:  1,
	}
}

func (s *OrderRepositoryStub) CreateFromBasket(ctx context.Context, basketID uuid.UUID, order *model.Order) (*model.Order, error) {
	if s.CreateFromBasketFn != nil {
		return s.CreateFromBasketFn(ctx, basketID, order)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.NextID == 0 {
		s.NextID = 1
	}
	order.ID = s.NextID
	order.CreatedAt = time.Now()
	s.NextID++
	s.Orders[order.ID] = order
	s.Consumed = append(s.Consumed, basketID)
	return order, nil
}

func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if order, ok := s.Orders[id]; ok {
		return order, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) ListByOwner(ctx context.Context, ownerID int64) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var orders []model.Order
	for _, order := range s.Orders {
		if order.OwnerID == ownerID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (s *OrderRepositoryStub) HasPaidOrders(ctx context.Context, ownerID int64) (bool, error) {
	if s.HasPaidFn != nil {
		return s.HasPaidFn(ctx, ownerID)
	}
	if s.Err != nil {
		return false, s.Err
	}
	return s.HasPaid[ownerID], nil
}

// PaymentRepositoryStub records applied events in memory and mimics the
// transactional idempotency of the real repository.
type PaymentRepositoryStub struct {
	ApplyCompletedFn func(context.Context, int64, *model.PaymentRecord) (*repository.CompletedOutcome, error)
	ApplyRefundFn    func(context.Context, int64, *model.PaymentRecord) (bool, error)
	ApplyDeclineFn   func(context.Context, int64, *model.PaymentRecord) (bool, error)

	Records     map[int64][]model.PaymentRecord
	KnownOrders map[int64]bool
	PaidOn      map[int64]bool
	Err         error
}

// NewPaymentRepositoryStub constructs stub repository with initialized maps.
func NewPaymentRepositoryStub() *PaymentRepositoryStub {
	return &PaymentRepositoryStub{
		Records:     make(map[int64][]model.PaymentRecord),
		KnownOrders: make(map[int64]bool),
		PaidOn:      make(map[int64]bool),
	}
}

func (s *PaymentRepositoryStub) seen(orderID int64, txRef *string) bool {
	if txRef == nil {
		return false
	}
	for _, rec := range s.Records[orderID] {
		if rec.TxRef != nil && *rec.TxRef == *txRef {
			return true
		}
	}
	return false
}

func (s *PaymentRepositoryStub) ApplyCompleted(ctx context.Context, orderID int64, record *model.PaymentRecord) (*repository.CompletedOutcome, error) {
	if s.ApplyCompletedFn != nil {
		return s.ApplyCompletedFn(ctx, orderID, record)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if !s.KnownOrders[orderID] {
		return nil, domainErrors.ErrNotFound
	}
	if s.seen(orderID, record.TxRef) {
		return &repository.CompletedOutcome{}, nil
	}
	s.Records[orderID] = append(s.Records[orderID], *record)
	return &repository.CompletedOutcome{Applied: true, OrderPaid: s.PaidOn[orderID]}, nil
}

func (s *PaymentRepositoryStub) ApplyRefund(ctx context.Context, orderID int64, record *model.PaymentRecord) (bool, error) {
	if s.ApplyRefundFn != nil {
		return s.ApplyRefundFn(ctx, orderID, record)
	}
	if s.Err != nil {
		return false, s.Err
	}
	if !s.KnownOrders[orderID] {
		return false, domainErrors.ErrNotFound
	}
	if s.seen(orderID, record.TxRef) {
		return false, nil
	}
	s.Records[orderID] = append(s.Records[orderID], *record)
	return true, nil
}

func (s *PaymentRepositoryStub) ApplyDecline(ctx context.Context, orderID int64, record *model.PaymentRecord) (bool, error) {
	if s.ApplyDeclineFn != nil {
		return s.ApplyDeclineFn(ctx, orderID, record)
	}
	if s.Err != nil {
		return false, s.Err
	}
	if !s.KnownOrders[orderID] {
		return false, domainErrors.ErrNotFound
	}
	if s.seen(orderID, record.TxRef) {
		return false, nil
	}
	s.Records[orderID] = append(s.Records[orderID], *record)
	return true, nil
}

func (s *PaymentRepositoryStub) ListByOrder(ctx context.Context, orderID int64) ([]model.PaymentRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Records[orderID], nil
}

// SubscriptionRepositoryStub keeps subscriptions and gateway links in memory.
type SubscriptionRepositoryStub struct {
	Subs       map[uuid.UUID]*model.Subscription
	Links      map[string]*model.GatewayLink
	SalesByRef map[string]bool
	History    []model.PaymentRecord
	Err        error
}

// NewSubscriptionRepositoryStub constructs stub repository with initialized maps.
func NewSubscriptionRepositoryStub() *SubscriptionRepositoryStub {
	return &SubscriptionRepositoryStub{
		Subs:       make(map[uuid.UUID]*model.Subscription),
		Links:      make(map[string]*model.GatewayLink),
		SalesByRef: make(map[string]bool),
	}
}

func (s *SubscriptionRepositoryStub) Activate(ctx context.Context, sub *model.Subscription, link *model.GatewayLink) (*model.Subscription, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	now := time.Now()
	for _, existing := range s.Subs {
		if existing.Status == model.SubscriptionStatusActive {
			existing.Status = model.SubscriptionStatusRetired
			existing.RetiredAt = &now
		}
	}
	sub.Status = model.SubscriptionStatusActive
	sub.CreatedAt = now
	s.Subs[sub.ID] = sub
	s.Links[link.ExternalID] = link
	return sub, nil
}

func (s *SubscriptionRepositoryStub) Reactivate(ctx context.Context, subscriptionID uuid.UUID, nextBilling time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	sub, ok := s.Subs[subscriptionID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	sub.Status = model.SubscriptionStatusActive
	sub.NextBillingTime = nextBilling
	sub.CancelledAt = nil
	return nil
}

func (s *SubscriptionRepositoryStub) UpdateBilling(ctx context.Context, subscriptionID uuid.UUID, nextBilling time.Time, isOnTrial bool) error {
	if s.Err != nil {
		return s.Err
	}
	sub, ok := s.Subs[subscriptionID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	sub.NextBillingTime = nextBilling
	sub.IsOnTrial = isOnTrial
	return nil
}

func (s *SubscriptionRepositoryStub) Suspend(ctx context.Context, subscriptionID uuid.UUID) error {
	if s.Err != nil {
		return s.Err
	}
	sub, ok := s.Subs[subscriptionID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	sub.Status = model.SubscriptionStatusSuspended
	return nil
}

func (s *SubscriptionRepositoryStub) Cancel(ctx context.Context, subscriptionID uuid.UUID, cancelledAt time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	sub, ok := s.Subs[subscriptionID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	sub.Status = model.SubscriptionStatusCancelled
	sub.CancelledAt = &cancelledAt
	return nil
}

func (s *SubscriptionRepositoryStub) GetLinkByExternalID(ctx context.Context, externalID string) (*model.GatewayLink, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if link, ok := s.Links[externalID]; ok {
		return link, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (s *SubscriptionRepositoryStub) RecordSalePayment(ctx context.Context, linkID uuid.UUID, record *model.PaymentRecord) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	if record.TxRef != nil {
		if s.SalesByRef[*record.TxRef] {
			return false, nil
		}
		s.SalesByRef[*record.TxRef] = true
	}
	s.History = append(s.History, *record)
	return true, nil
}

func (s *SubscriptionRepositoryStub) Current(ctx context.Context) (*model.Subscription, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var latest *model.Subscription
	for _, sub := range s.Subs {
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, domainErrors.ErrNotFound
	}
	return latest, nil
}

func (s *SubscriptionRepositoryStub) BillingHistory(ctx context.Context) ([]model.PaymentRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.History, nil
}
