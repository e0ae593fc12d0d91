package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Proxy inventory kinds sold by the upstream provider.
const (
	TypeISP      string = "isp"
	TypeIPv6     string = "ipv6"
	TypeResident string = "resident"
)

// Order payment statuses.
const (
	// PendingStatus заказ создан, оплата ещё не проведена;
	PendingStatus string = "PENDING"
	// PaidStatus заказ оплачен и выдан, терминальный статус;
	PaidStatus string = "PAID"
)

// Payment gateway methods.
const (
	MethodWebMoney   string = "WEBMONEY"
	MethodPayeer     string = "PAYEER"
	MethodDigiseller string = "DIGISELLER"
)

type User struct {
	ID           string          `db:"id"`
	Email        string          `db:"email"`
	PasswordHash string          `db:"password_hash"`
	Balance      decimal.Decimal `db:"balance"`
	Lang         string          `db:"lang"`
	IsVerified   bool            `db:"is_verified"`
	CreatedAt    time.Time       `db:"created_at"`
}

// Referral links a user to the partner who referred them.
type Referral struct {
	ID        string    `db:"id"`
	PartnerID string    `db:"partner_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

type Order struct {
	ID            string          `db:"id"`
	UserID        string          `db:"user_id"`
	Type          string          `db:"type"`
	Country       *string         `db:"country"`
	Quantity      *int            `db:"quantity"`
	Tariff        *string         `db:"tariff"`
	PeriodDays    *int            `db:"period_days"`
	ProxyType     *string         `db:"proxy_type"`
	Goal          *string         `db:"goal"`
	TotalPrice    decimal.Decimal `db:"total_price"`
	Status        string          `db:"status"`
	ProxySellerID *string         `db:"proxy_seller_id"`
	OrderID       *string         `db:"order_id"`
	EndDate       time.Time       `db:"end_date"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Payment is an append-only record of a credited top-up.
type Payment struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	Price     decimal.Decimal `db:"price"`
	Method    string          `db:"method"`
	Inv       *string         `db:"inv"`
	CreatedAt time.Time       `db:"created_at"`
}

type Coupon struct {
	Code     string `db:"code"`
	Discount int    `db:"discount"`
	Limit    int    `db:"limit"`
}

// PartnerTransaction is an append-only commission record.
type PartnerTransaction struct {
	ID        string          `db:"id"`
	PartnerID string          `db:"partner_id"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
}

// EndDateLayout is the legacy dd.mm.yyyy format kept at the
// serialization boundary for emails and API payloads.
const EndDateLayout = "02.01.2006"
