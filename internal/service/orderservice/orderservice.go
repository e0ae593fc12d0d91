// Package orderservice finalizes purchase intents: it validates funds
// and promo codes, acquires inventory upstream and settles the order,
// balance, coupon and referral commission in one transaction.
package orderservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/proxyluxe/backend/internal/domain"
	"github.com/proxyluxe/backend/internal/pg"
	"github.com/proxyluxe/backend/internal/proxyseller"
	"github.com/proxyluxe/backend/internal/service/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderRepo interface {
	FindByID(ctx context.Context, orderID string) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, orderID string) (*domain.Order, error)
	FindByProxySellerID(ctx context.Context, proxySellerID string) (*domain.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Order, error)
	FindPackageKeysByUserID(ctx context.Context, userID string) ([]string, error)
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string, proxySellerID *string, upstreamOrderID *string, price decimal.Decimal, endDate time.Time) error
	UpdateEndDate(ctx context.Context, orderID string, endDate time.Time) error
	DeletePending(ctx context.Context, orderID, userID string) (bool, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, userID string) (*domain.User, error)
	DecrementBalance(ctx context.Context, userID string, amount decimal.Decimal) (bool, error)
	FindReferralByUserID(ctx context.Context, userID string) (*domain.Referral, error)
}

type CouponRepo interface {
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	Consume(ctx context.Context, code string) (bool, error)
}

type PartnerRepo interface {
	CreateTransaction(ctx context.Context, tx *domain.PartnerTransaction) error
}

// Provisioner is the upstream inventory gateway.
type Provisioner interface {
	GetReferenceByType(ctx context.Context, proxyType string) (*proxyseller.Reference, error)
	PlaceOrder(ctx context.Context, info proxyseller.OrderInfo) (*proxyseller.Placement, error)
	Prolong(ctx context.Context, proxyType string, ids []string, periodID int) error
}

// Notifier sends the post-settlement email. Best-effort: it logs its
// own failures and never propagates them.
type Notifier interface {
	SendPurchaseConfirmation(email, lang string, expiry time.Time)
}

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyProcessed = errors.New("order already processed")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidPromocode      = errors.New("invalid promocode")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInvalidReferenceData  = errors.New("invalid reference data")
	ErrProvisioningFailed    = errors.New("provisioning failed")
)

var (
	hundred      = decimal.NewFromInt(100)
	referralRate = decimal.RequireFromString("0.15")
)

type Service struct {
	orderRepo   OrderRepo
	userRepo    UserRepo
	couponRepo  CouponRepo
	partnerRepo PartnerRepo
	provisioner Provisioner
	notifier    Notifier
	txManager   pg.TXManager
	now         func() time.Time
}

func New(orderRepo OrderRepo, userRepo UserRepo, couponRepo CouponRepo, partnerRepo PartnerRepo, provisioner Provisioner, notifier Notifier, txManager pg.TXManager) *Service {
	return &Service{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		couponRepo:  couponRepo,
		partnerRepo: partnerRepo,
		provisioner: provisioner,
		notifier:    notifier,
		txManager:   txManager,
		now:         time.Now,
	}
}

type CreateOrderInput struct {
	UserID     string
	Type       string
	Country    *string
	Quantity   *int
	Tariff     *string
	PeriodDays *int
	ProxyType  *string
	Goal       *string
}

// FinishResult is the settlement confirmation returned to the caller.
type FinishResult struct {
	OrderID string
	Type    string
}

// Create records a purchase intent as a PENDING order priced at
// creation time. Nothing is charged and nothing is provisioned yet.
func (s *Service) Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	quantity, err := billableQuantity(input.Type, input.Quantity, input.Tariff)
	if err != nil {
		return nil, err
	}
	if input.Type != domain.TypeResident && (input.Country == nil || input.PeriodDays == nil) {
		return nil, fmt.Errorf("%w: country and period are required", pricing.ErrUnknownTariff)
	}

	price, err := pricing.ForOrder(input.Type, quantity)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:     input.UserID,
		Type:       input.Type,
		Country:    input.Country,
		Quantity:   input.Quantity,
		Tariff:     input.Tariff,
		PeriodDays: input.PeriodDays,
		ProxyType:  input.ProxyType,
		Goal:       input.Goal,
		TotalPrice: price,
		Status:     domain.PendingStatus,
		EndDate:    proxyseller.NextMonth(s.now()),
	}
	saved, err := s.orderRepo.Save(ctx, order)
	if err != nil {
		zap.L().Error("can't save order", zap.Error(err))
		return nil, err
	}
	return saved, nil
}

// Finish settles a pending order. Provisioning happens before the
// transaction so a slow upstream call never holds row locks; the
// FOR UPDATE status re-check inside the transaction is the sole
// idempotence mechanism for concurrent callers.
func (s *Service) Finish(ctx context.Context, orderID, promocode, lang string) (*FinishResult, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != domain.PendingStatus {
		zap.L().Info("order already processed", zap.String("orderID", orderID))
		return nil, ErrOrderAlreadyProcessed
	}

	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Order without an owner is a data-corruption signal.
		zap.L().Error("order references missing user", zap.String("orderID", orderID), zap.String("userID", order.UserID))
		return nil, ErrUserNotFound
	}

	price := order.TotalPrice
	if promocode != "" {
		coupon, err := s.couponRepo.FindByCode(ctx, promocode)
		if err != nil {
			return nil, err
		}
		if coupon == nil || coupon.Limit <= 0 {
			return nil, ErrInvalidPromocode
		}
		price = price.Mul(hundred.Sub(decimal.NewFromInt(int64(coupon.Discount)))).Div(hundred)
	}

	if user.Balance.LessThan(price) {
		return nil, ErrInsufficientBalance
	}

	info, err := s.buildOrderInfo(ctx, order)
	if err != nil {
		return nil, err
	}

	placement, err := s.provisioner.PlaceOrder(ctx, *info)
	if err != nil {
		zap.L().Error("provisioning failed", zap.String("orderID", orderID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	endDate := proxyseller.NextMonth(s.now())
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		locked, err := s.orderRepo.FindByIDForUpdate(ctx, order.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrOrderNotFound
		}
		if locked.Status != domain.PendingStatus {
			return ErrOrderAlreadyProcessed
		}

		debited, err := s.userRepo.DecrementBalance(ctx, user.ID, price)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientBalance
		}

		proxySellerID, err := s.resolveProxySellerID(ctx, order, placement)
		if err != nil {
			return err
		}
		upstreamID := placement.OrderID
		// The claim runs under its own savepoint: a unique violation on
		// the handle aborts the session until the savepoint rolls back,
		// and the retry below must still go through.
		err = s.txManager.Begin(ctx, func(ctx context.Context) error {
			return s.orderRepo.MarkPaid(ctx, order.ID, proxySellerID, &upstreamID, price, endDate)
		})
		if isUniqueViolation(err) && proxySellerID != nil {
			// Another order claimed the handle between the check and the
			// update. Settlement still wins, the handle is dropped.
			zap.L().Warn("proxy-seller id already claimed", zap.String("orderID", order.ID))
			err = s.orderRepo.MarkPaid(ctx, order.ID, nil, &upstreamID, price, endDate)
		}
		if err != nil {
			return err
		}

		if promocode != "" {
			consumed, err := s.couponRepo.Consume(ctx, promocode)
			if err != nil {
				return err
			}
			if !consumed {
				return ErrInvalidPromocode
			}
		}

		referral, err := s.userRepo.FindReferralByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		if referral != nil {
			err = s.partnerRepo.CreateTransaction(ctx, &domain.PartnerTransaction{
				PartnerID: referral.PartnerID,
				Amount:    price.Mul(referralRate),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if lang == "" {
		lang = user.Lang
	}
	s.notifier.SendPurchaseConfirmation(user.Email, lang, endDate)

	zap.L().Info("order settled",
		zap.String("orderID", order.ID),
		zap.String("type", order.Type),
		zap.String("price", price.String()))
	return &FinishResult{OrderID: order.ID, Type: order.Type}, nil
}

// Prolong extends a paid order by one month. The renewal is billed as a
// fresh child order row so billing history stays append-only.
func (s *Service) Prolong(ctx context.Context, userID, orderID string, ids []string, periodID int) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	if order.Status != domain.PaidStatus {
		return nil, ErrOrderNotFound
	}

	quantity, err := billableQuantity(order.Type, order.Quantity, order.Tariff)
	if err != nil {
		return nil, err
	}
	price, err := pricing.ForOrder(order.Type, quantity)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Balance.LessThan(price) {
		return nil, ErrInsufficientBalance
	}

	if err := s.provisioner.Prolong(ctx, order.Type, ids, periodID); err != nil {
		zap.L().Error("prolongation failed upstream", zap.String("orderID", orderID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	newEndDate := proxyseller.NextMonth(order.EndDate)
	var renewal *domain.Order
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		debited, err := s.userRepo.DecrementBalance(ctx, userID, price)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientBalance
		}

		if err := s.orderRepo.UpdateEndDate(ctx, order.ID, newEndDate); err != nil {
			return err
		}

		renewal = &domain.Order{
			UserID:     order.UserID,
			Type:       order.Type,
			Country:    order.Country,
			Quantity:   order.Quantity,
			Tariff:     order.Tariff,
			PeriodDays: order.PeriodDays,
			ProxyType:  order.ProxyType,
			Goal:       order.Goal,
			TotalPrice: price,
			Status:     domain.PaidStatus,
			OrderID:    order.OrderID,
			EndDate:    newEndDate,
		}
		renewal, err = s.orderRepo.Save(ctx, renewal)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order prolonged",
		zap.String("orderID", order.ID),
		zap.Time("endDate", newEndDate))
	return renewal, nil
}

// List returns the user's orders that still await payment.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orderRepo.FindByUserID(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get orders", zap.Error(err))
		return nil, err
	}
	pending := make([]domain.Order, 0)
	for _, order := range orders {
		if order.Status == domain.PendingStatus {
			pending = append(pending, order)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	return pending, nil
}

// Delete cancels a pending order. Paid orders are immutable.
func (s *Service) Delete(ctx context.Context, userID, orderID string) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil || order.UserID != userID {
		return ErrOrderNotFound
	}
	if order.Status != domain.PendingStatus {
		return ErrOrderAlreadyProcessed
	}

	deleted, err := s.orderRepo.DeletePending(ctx, orderID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrOrderAlreadyProcessed
	}
	return nil
}

func (s *Service) CheckPromocode(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil || coupon.Limit <= 0 {
		return nil, ErrInvalidPromocode
	}
	return coupon, nil
}

// buildOrderInfo resolves the reference ids the upstream payload needs.
func (s *Service) buildOrderInfo(ctx context.Context, order *domain.Order) (*proxyseller.OrderInfo, error) {
	ref, err := s.provisioner.GetReferenceByType(ctx, order.Type)
	if err != nil {
		zap.L().Error("can't fetch reference data", zap.String("type", order.Type), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidReferenceData, err)
	}

	info := proxyseller.OrderInfo{
		Type:             order.Type,
		Protocol:         order.ProxyType,
		CustomTargetName: order.Goal,
	}

	if order.Type == domain.TypeResident {
		if order.Tariff == nil {
			return nil, fmt.Errorf("%w: resident order without tariff", ErrInvalidReferenceData)
		}
		tariffID := matchReference(ref.Tariffs, *order.Tariff)
		if tariffID == nil {
			return nil, fmt.Errorf("%w: unknown tariff %q", ErrInvalidReferenceData, *order.Tariff)
		}
		info.Tariff = order.Tariff
		info.TariffID = tariffID

		keys, err := s.orderRepo.FindPackageKeysByUserID(ctx, order.UserID)
		if err != nil {
			return nil, err
		}
		info.ExistingPackageKeys = keys
		return &info, nil
	}

	if order.Country == nil || order.PeriodDays == nil || order.Quantity == nil {
		return nil, fmt.Errorf("%w: incomplete order fields", ErrInvalidReferenceData)
	}
	countryID := matchReference(ref.Countries, *order.Country)
	if countryID == nil {
		return nil, fmt.Errorf("%w: unknown country %q", ErrInvalidReferenceData, *order.Country)
	}
	periodID := matchReference(ref.Periods, fmt.Sprintf("%d days", *order.PeriodDays))
	if periodID == nil {
		return nil, fmt.Errorf("%w: no period for %d days", ErrInvalidReferenceData, *order.PeriodDays)
	}
	info.CountryID = countryID
	info.PeriodID = periodID
	info.Quantity = order.Quantity
	return &info, nil
}

// resolveProxySellerID picks the external handle stored on the order.
// Non-resident orders store the upstream order id; resident orders
// store the package key unless another order already claims it.
func (s *Service) resolveProxySellerID(ctx context.Context, order *domain.Order, placement *proxyseller.Placement) (*string, error) {
	if order.Type != domain.TypeResident {
		id := placement.OrderID
		return &id, nil
	}
	if placement.PackageKey == nil {
		return nil, nil
	}
	existing, err := s.orderRepo.FindByProxySellerID(ctx, *placement.PackageKey)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != order.ID {
		// Extending a shared package: the key stays with its first owner.
		return nil, nil
	}
	return placement.PackageKey, nil
}

// matchReference finds an item by name, case-insensitively, accepting
// containment so "Germany" matches "Germany DE".
func matchReference(items []proxyseller.ReferenceItem, name string) *int {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			id := item.ID
			return &id
		}
	}
	return nil
}

// billableQuantity is what the pricing oracle is keyed by: the proxy
// count for non-resident kinds, the tariff's GB label for resident.
func billableQuantity(proxyType string, quantity *int, tariff *string) (int, error) {
	if proxyType == domain.TypeResident {
		if tariff == nil {
			return 0, fmt.Errorf("%w: resident order without tariff", pricing.ErrUnknownTariff)
		}
		fields := strings.Fields(*tariff)
		if len(fields) == 0 {
			return 0, fmt.Errorf("%w: malformed tariff %q", pricing.ErrUnknownTariff, *tariff)
		}
		gb, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, fmt.Errorf("%w: malformed tariff %q", pricing.ErrUnknownTariff, *tariff)
		}
		return gb, nil
	}
	if quantity == nil || *quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity is required", pricing.ErrUnknownTariff)
	}
	return *quantity, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
