package orderservice

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/proxyluxe/backend/internal/domain"
	"github.com/proxyluxe/backend/internal/pg"
	"github.com/proxyluxe/backend/internal/proxyseller"
	"github.com/proxyluxe/backend/internal/service/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	orderRepo   *MockOrderRepo
	userRepo    *MockUserRepo
	couponRepo  *MockCouponRepo
	partnerRepo *MockPartnerRepo
	provisioner *MockProvisioner
	notifier    *MockNotifier
	txManager   *pg.MockTXManager
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := &mocks{
		orderRepo:   NewMockOrderRepo(ctrl),
		userRepo:    NewMockUserRepo(ctrl),
		couponRepo:  NewMockCouponRepo(ctrl),
		partnerRepo: NewMockPartnerRepo(ctrl),
		provisioner: NewMockProvisioner(ctrl),
		notifier:    NewMockNotifier(ctrl),
		txManager:   pg.NewMockTXManager(ctrl),
	}
	service := New(m.orderRepo, m.userRepo, m.couponRepo, m.partnerRepo, m.provisioner, m.notifier, m.txManager)
	service.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) }
	return service, m
}

// decEq matches decimals by value, not internal representation.
type decEq struct {
	want decimal.Decimal
}

func (d decEq) Matches(x interface{}) bool {
	got, ok := x.(decimal.Decimal)
	return ok && got.Equal(d.want)
}

func (d decEq) String() string {
	return fmt.Sprintf("decimal equal to %s", d.want)
}

func eqDec(s string) gomock.Matcher {
	return decEq{want: decimal.RequireFromString(s)}
}

// expectTx passes callbacks straight through. AnyTimes because the
// settlement path nests a second Begin around the handle claim.
func (m *mocks) expectTx() {
	m.txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func pendingISPOrder() *domain.Order {
	return &domain.Order{
		ID:         "order-1",
		UserID:     "user-1",
		Type:       domain.TypeISP,
		Country:    strPtr("Germany"),
		Quantity:   intPtr(5),
		PeriodDays: intPtr(30),
		TotalPrice: decimal.RequireFromString("12.00"),
		Status:     domain.PendingStatus,
	}
}

func ispReference() *proxyseller.Reference {
	return &proxyseller.Reference{
		Countries: []proxyseller.ReferenceItem{{ID: 10, Name: "Germany DE"}},
		Periods:   []proxyseller.ReferenceItem{{ID: 30, Name: "30 days"}},
	}
}

func TestFinish(t *testing.T) {
	endDate := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		orderID       string
		promocode     string
		prepareMock   func(m *mocks)
		expected      *FinishResult
		expectedError error
	}{
		{
			name:      "promocode discount is exact decimal math",
			orderID:   "order-1",
			promocode: "SALE20",
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(pendingISPOrder(), nil)
				m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
					Return(&domain.User{ID: "user-1", Email: "buyer@test.io", Lang: "en", Balance: decimal.NewFromInt(100)}, nil)
				m.couponRepo.EXPECT().FindByCode(gomock.Any(), "SALE20").
					Return(&domain.Coupon{Code: "SALE20", Discount: 20, Limit: 3}, nil)
				m.provisioner.EXPECT().GetReferenceByType(gomock.Any(), domain.TypeISP).Return(ispReference(), nil)
				m.provisioner.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
					Return(&proxyseller.Placement{OrderID: "1000501"}, nil)
				m.expectTx()
				m.orderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), "order-1").Return(pendingISPOrder(), nil)
				// 12.00 with 20% off must be exactly 9.6
				m.userRepo.EXPECT().DecrementBalance(gomock.Any(), "user-1", eqDec("9.6")).Return(true, nil)
				m.orderRepo.EXPECT().
					MarkPaid(gomock.Any(), "order-1", gomock.Any(), gomock.Any(), eqDec("9.6"), endDate).
					Return(nil)
				m.couponRepo.EXPECT().Consume(gomock.Any(), "SALE20").Return(true, nil)
				m.userRepo.EXPECT().FindReferralByUserID(gomock.Any(), "user-1").Return(nil, nil)
				m.notifier.EXPECT().SendPurchaseConfirmation("buyer@test.io", "en", endDate)
			},
			expected: &FinishResult{OrderID: "order-1", Type: domain.TypeISP},
		},
		{
			name:    "referral commission is 15 percent",
			orderID: "order-1",
			prepareMock: func(m *mocks) {
				order := pendingISPOrder()
				order.TotalPrice = decimal.RequireFromString("100.00")
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(order, nil)
				m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
					Return(&domain.User{ID: "user-1", Email: "buyer@test.io", Lang: "ru", Balance: decimal.NewFromInt(500)}, nil)
				m.provisioner.EXPECT().GetReferenceByType(gomock.Any(), domain.TypeISP).Return(ispReference(), nil)
				m.provisioner.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
					Return(&proxyseller.Placement{OrderID: "1000502"}, nil)
				m.expectTx()
				m.orderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), "order-1").Return(order, nil)
				m.userRepo.EXPECT().DecrementBalance(gomock.Any(), "user-1", eqDec("100.00")).Return(true, nil)
				m.orderRepo.EXPECT().
					MarkPaid(gomock.Any(), "order-1", gomock.Any(), gomock.Any(), eqDec("100.00"), endDate).
					Return(nil)
				m.userRepo.EXPECT().FindReferralByUserID(gomock.Any(), "user-1").
					Return(&domain.Referral{PartnerID: "partner-1", UserID: "user-1"}, nil)
				m.partnerRepo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *domain.PartnerTransaction) error {
						assert.Equal(t, "partner-1", tx.PartnerID)
						assert.True(t, tx.Amount.Equal(decimal.NewFromInt(15)))
						return nil
					})
				m.notifier.EXPECT().SendPurchaseConfirmation("buyer@test.io", "ru", endDate)
			},
			expected: &FinishResult{OrderID: "order-1", Type: domain.TypeISP},
		},
		{
			name:    "order not found",
			orderID: "missing",
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "missing").Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
		{
			name:    "already processed order is rejected",
			orderID: "order-1",
			prepareMock: func(m *mocks) {
				order := pendingISPOrder()
				order.Status = domain.PaidStatus
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(order, nil)
			},
			expectedError: ErrOrderAlreadyProcessed,
		},
		{
			name:      "invalid promocode leaves no side effects",
			orderID:   "order-1",
			promocode: "NOPE",
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(pendingISPOrder(), nil)
				m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
					Return(&domain.User{ID: "user-1", Balance: decimal.NewFromInt(100)}, nil)
				m.couponRepo.EXPECT().FindByCode(gomock.Any(), "NOPE").Return(nil, nil)
			},
			expectedError: ErrInvalidPromocode,
		},
		{
			name:    "insufficient balance before any mutation",
			orderID: "order-1",
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(pendingISPOrder(), nil)
				m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
					Return(&domain.User{ID: "user-1", Balance: decimal.RequireFromString("1.00")}, nil)
			},
			expectedError: ErrInsufficientBalance,
		},
		{
			name:    "provisioning failure keeps the order pending",
			orderID: "order-1",
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(pendingISPOrder(), nil)
				m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
					Return(&domain.User{ID: "user-1", Balance: decimal.NewFromInt(100)}, nil)
				m.provisioner.EXPECT().GetReferenceByType(gomock.Any(), domain.TypeISP).Return(ispReference(), nil)
				m.provisioner.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("out of stock"))
			},
			expectedError: ErrProvisioningFailed,
		},
		{
			name:    "reference service error",
			orderID: "order-1",
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(pendingISPOrder(), nil)
				m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
					Return(&domain.User{ID: "user-1", Balance: decimal.NewFromInt(100)}, nil)
				m.provisioner.EXPECT().GetReferenceByType(gomock.Any(), domain.TypeISP).
					Return(nil, errors.New("upstream down"))
			},
			expectedError: ErrInvalidReferenceData,
		},
		{
			name:    "race loser sees already processed inside the transaction",
			orderID: "order-1",
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(pendingISPOrder(), nil)
				m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
					Return(&domain.User{ID: "user-1", Balance: decimal.NewFromInt(100)}, nil)
				m.provisioner.EXPECT().GetReferenceByType(gomock.Any(), domain.TypeISP).Return(ispReference(), nil)
				m.provisioner.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
					Return(&proxyseller.Placement{OrderID: "1000503"}, nil)
				m.expectTx()
				locked := pendingISPOrder()
				locked.Status = domain.PaidStatus
				m.orderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), "order-1").Return(locked, nil)
			},
			expectedError: ErrOrderAlreadyProcessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			result, err := service.Finish(context.Background(), tt.orderID, tt.promocode, "")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFinish_ResidentPackageKeyCollision(t *testing.T) {
	service, m := NewMock(t)
	endDate := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

	order := &domain.Order{
		ID:         "order-2",
		UserID:     "user-1",
		Type:       domain.TypeResident,
		Tariff:     strPtr("3 Gb"),
		TotalPrice: decimal.NewFromInt(7),
		Status:     domain.PendingStatus,
	}
	m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-2").Return(order, nil)
	m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
		Return(&domain.User{ID: "user-1", Email: "buyer@test.io", Lang: "en", Balance: decimal.NewFromInt(50)}, nil)
	m.provisioner.EXPECT().GetReferenceByType(gomock.Any(), domain.TypeResident).
		Return(&proxyseller.Reference{Tariffs: []proxyseller.ReferenceItem{{ID: 7, Name: "3 Gb"}}}, nil)
	m.orderRepo.EXPECT().FindPackageKeysByUserID(gomock.Any(), "user-1").Return([]string{"pk-owned"}, nil)
	m.provisioner.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
		Return(&proxyseller.Placement{OrderID: "42", PackageKey: strPtr("pk-owned")}, nil)
	m.expectTx()
	m.orderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), "order-2").Return(order, nil)
	m.userRepo.EXPECT().DecrementBalance(gomock.Any(), "user-1", eqDec("7")).Return(true, nil)
	// another order already claims pk-owned: settlement proceeds with a
	// NULL handle instead of failing
	m.orderRepo.EXPECT().FindByProxySellerID(gomock.Any(), "pk-owned").
		Return(&domain.Order{ID: "order-0", ProxySellerID: strPtr("pk-owned")}, nil)
	m.orderRepo.EXPECT().
		MarkPaid(gomock.Any(), "order-2", nil, gomock.Any(), eqDec("7"), endDate).
		Return(nil)
	m.userRepo.EXPECT().FindReferralByUserID(gomock.Any(), "user-1").Return(nil, nil)
	m.notifier.EXPECT().SendPurchaseConfirmation("buyer@test.io", "en", endDate)

	result, err := service.Finish(context.Background(), "order-2", "", "")
	assert.NoError(t, err)
	assert.Equal(t, &FinishResult{OrderID: "order-2", Type: domain.TypeResident}, result)
}

func TestFinish_ResidentPackageKeyClaimRace(t *testing.T) {
	service, m := NewMock(t)
	endDate := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

	order := &domain.Order{
		ID:         "order-3",
		UserID:     "user-1",
		Type:       domain.TypeResident,
		Tariff:     strPtr("3 Gb"),
		TotalPrice: decimal.NewFromInt(7),
		Status:     domain.PendingStatus,
	}
	m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-3").Return(order, nil)
	m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
		Return(&domain.User{ID: "user-1", Email: "buyer@test.io", Lang: "en", Balance: decimal.NewFromInt(50)}, nil)
	m.provisioner.EXPECT().GetReferenceByType(gomock.Any(), domain.TypeResident).
		Return(&proxyseller.Reference{Tariffs: []proxyseller.ReferenceItem{{ID: 7, Name: "3 Gb"}}}, nil)
	m.orderRepo.EXPECT().FindPackageKeysByUserID(gomock.Any(), "user-1").Return(nil, nil)
	m.provisioner.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
		Return(&proxyseller.Placement{OrderID: "43", PackageKey: strPtr("pk-contested")}, nil)
	m.expectTx()
	m.orderRepo.EXPECT().FindByIDForUpdate(gomock.Any(), "order-3").Return(order, nil)
	m.userRepo.EXPECT().DecrementBalance(gomock.Any(), "user-1", eqDec("7")).Return(true, nil)
	// the check sees the key as free, then a concurrent settlement wins
	// the unique index: the claim retries with a NULL handle and the
	// debit still commits
	m.orderRepo.EXPECT().FindByProxySellerID(gomock.Any(), "pk-contested").Return(nil, nil)
	m.orderRepo.EXPECT().
		MarkPaid(gomock.Any(), "order-3", strPtr("pk-contested"), gomock.Any(), eqDec("7"), endDate).
		Return(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
	m.orderRepo.EXPECT().
		MarkPaid(gomock.Any(), "order-3", nil, gomock.Any(), eqDec("7"), endDate).
		Return(nil)
	m.userRepo.EXPECT().FindReferralByUserID(gomock.Any(), "user-1").Return(nil, nil)
	m.notifier.EXPECT().SendPurchaseConfirmation("buyer@test.io", "en", endDate)

	result, err := service.Finish(context.Background(), "order-3", "", "")
	assert.NoError(t, err)
	assert.Equal(t, &FinishResult{OrderID: "order-3", Type: domain.TypeResident}, result)
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name          string
		input         CreateOrderInput
		prepareMock   func(m *mocks)
		expectedPrice string
		expectedError error
	}{
		{
			name: "isp order priced per unit",
			input: CreateOrderInput{
				UserID:     "user-1",
				Type:       domain.TypeISP,
				Country:    strPtr("Germany"),
				Quantity:   intPtr(10),
				PeriodDays: intPtr(30),
			},
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, order *domain.Order) (*domain.Order, error) {
						order.ID = "order-new"
						return order, nil
					})
			},
			expectedPrice: "24",
		},
		{
			name: "resident order priced by tariff table",
			input: CreateOrderInput{
				UserID: "user-1",
				Type:   domain.TypeResident,
				Tariff: strPtr("25 Gb"),
			},
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, order *domain.Order) (*domain.Order, error) {
						order.ID = "order-new"
						return order, nil
					})
			},
			expectedPrice: "50",
		},
		{
			name: "missing quantity is rejected",
			input: CreateOrderInput{
				UserID:     "user-1",
				Type:       domain.TypeISP,
				Country:    strPtr("Germany"),
				PeriodDays: intPtr(30),
			},
			prepareMock:   func(m *mocks) {},
			expectedError: pricing.ErrUnknownTariff,
		},
		{
			name: "resident tariff outside the table is rejected",
			input: CreateOrderInput{
				UserID: "user-1",
				Type:   domain.TypeResident,
				Tariff: strPtr("7 Gb"),
			},
			prepareMock:   func(m *mocks) {},
			expectedError: pricing.ErrUnknownTariff,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			order, err := service.Create(context.Background(), tt.input)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, domain.PendingStatus, order.Status)
			assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString(tt.expectedPrice)))
			assert.Equal(t, time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC), order.EndDate)
		})
	}
}

func TestProlong(t *testing.T) {
	service, m := NewMock(t)

	order := pendingISPOrder()
	order.Status = domain.PaidStatus
	order.OrderID = strPtr("1000501")
	order.EndDate = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(order, nil)
	m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
		Return(&domain.User{ID: "user-1", Balance: decimal.NewFromInt(100)}, nil)
	m.provisioner.EXPECT().Prolong(gomock.Any(), domain.TypeISP, []string{"1000501"}, 30).Return(nil)
	m.expectTx()
	m.userRepo.EXPECT().DecrementBalance(gomock.Any(), "user-1", eqDec("12")).Return(true, nil)
	m.orderRepo.EXPECT().
		UpdateEndDate(gomock.Any(), "order-1", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)).
		Return(nil)
	m.orderRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, renewal *domain.Order) (*domain.Order, error) {
			assert.Equal(t, domain.PaidStatus, renewal.Status)
			assert.True(t, renewal.TotalPrice.Equal(decimal.NewFromInt(12)))
			assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), renewal.EndDate)
			renewal.ID = "order-renewal"
			return renewal, nil
		})

	renewal, err := service.Prolong(context.Background(), "user-1", "order-1", []string{"1000501"}, 30)
	assert.NoError(t, err)
	assert.Equal(t, "order-renewal", renewal.ID)
}

func TestProlong_InsufficientBalance(t *testing.T) {
	service, m := NewMock(t)

	order := pendingISPOrder()
	order.Status = domain.PaidStatus

	m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(order, nil)
	m.userRepo.EXPECT().FindByID(gomock.Any(), "user-1").
		Return(&domain.User{ID: "user-1", Balance: decimal.RequireFromString("0.50")}, nil)

	_, err := service.Prolong(context.Background(), "user-1", "order-1", []string{"1000501"}, 30)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestList(t *testing.T) {
	service, m := NewMock(t)

	m.orderRepo.EXPECT().FindByUserID(gomock.Any(), "user-1").Return([]domain.Order{
		{ID: "order-1", Status: domain.PendingStatus},
		{ID: "order-2", Status: domain.PaidStatus},
	}, nil)

	orders, err := service.List(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, "order-1", orders[0].ID)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name          string
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name: "pending order is deleted",
			prepareMock: func(m *mocks) {
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(pendingISPOrder(), nil)
				m.orderRepo.EXPECT().DeletePending(gomock.Any(), "order-1", "user-1").Return(true, nil)
			},
		},
		{
			name: "paid order is immutable",
			prepareMock: func(m *mocks) {
				order := pendingISPOrder()
				order.Status = domain.PaidStatus
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(order, nil)
			},
			expectedError: ErrOrderAlreadyProcessed,
		},
		{
			name: "foreign order is invisible",
			prepareMock: func(m *mocks) {
				order := pendingISPOrder()
				order.UserID = "someone-else"
				m.orderRepo.EXPECT().FindByID(gomock.Any(), "order-1").Return(order, nil)
			},
			expectedError: ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			err := service.Delete(context.Background(), "user-1", "order-1")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckPromocode(t *testing.T) {
	service, m := NewMock(t)

	m.couponRepo.EXPECT().FindByCode(gomock.Any(), "SALE20").
		Return(&domain.Coupon{Code: "SALE20", Discount: 20, Limit: 1}, nil)
	coupon, err := service.CheckPromocode(context.Background(), "SALE20")
	assert.NoError(t, err)
	assert.Equal(t, 20, coupon.Discount)

	m.couponRepo.EXPECT().FindByCode(gomock.Any(), "USED").
		Return(&domain.Coupon{Code: "USED", Discount: 20, Limit: 0}, nil)
	_, err = service.CheckPromocode(context.Background(), "USED")
	assert.ErrorIs(t, err, ErrInvalidPromocode)
}
