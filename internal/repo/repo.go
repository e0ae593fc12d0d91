package repo

import (
	"github.com/proxyluxe/backend/internal/pg"
	couponrepo "github.com/proxyluxe/backend/internal/repo/coupon-repo"
	orderrepo "github.com/proxyluxe/backend/internal/repo/order-repo"
	partnerrepo "github.com/proxyluxe/backend/internal/repo/partner-repo"
	paymentrepo "github.com/proxyluxe/backend/internal/repo/payment-repo"
	userrepo "github.com/proxyluxe/backend/internal/repo/user-repo"
)

type Repositories struct {
	UserRepo    *userrepo.Repository
	OrderRepo   *orderrepo.Repository
	PaymentRepo *paymentrepo.Repository
	CouponRepo  *couponrepo.Repository
	PartnerRepo *partnerrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:    userrepo.New(conn),
		OrderRepo:   orderrepo.New(conn),
		PaymentRepo: paymentrepo.New(conn),
		CouponRepo:  couponrepo.New(conn),
		PartnerRepo: partnerrepo.New(conn),
	}
}
