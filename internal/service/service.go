package service

import (
	"github.com/proxyluxe/backend/internal/handlers/auth"
	"github.com/proxyluxe/backend/internal/handlers/orders"
	"github.com/proxyluxe/backend/internal/handlers/payment"

	pkgauth "github.com/proxyluxe/backend/pkg/auth"
	"github.com/proxyluxe/backend/pkg/clients"

	"github.com/proxyluxe/backend/internal/config"
	"github.com/proxyluxe/backend/internal/notifier"
	"github.com/proxyluxe/backend/internal/pg"
	"github.com/proxyluxe/backend/internal/proxyseller"
	"github.com/proxyluxe/backend/internal/repo"
	authservice "github.com/proxyluxe/backend/internal/service/authservice"
	orderservice "github.com/proxyluxe/backend/internal/service/orderservice"
	paymentservice "github.com/proxyluxe/backend/internal/service/paymentservice"
)

type Services struct {
	AuthService    auth.Service
	OrderService   orders.Service
	PaymentService payment.Service
}

func New(
	repo *repo.Repositories,
	txManager pg.TXManager,
	provisioner *proxyseller.Client,
	sender notifier.Sender,
	client clients.HTTPClientI,
	jwtService pkgauth.JWTServiceInterface,
	cfg *config.Config,
) *Services {
	authService := authservice.New(repo.UserRepo, &pkgauth.HashService{}, jwtService)
	orderService := orderservice.New(repo.OrderRepo, repo.UserRepo, repo.CouponRepo, repo.PartnerRepo, provisioner, sender, txManager)
	paymentService := paymentservice.New(repo.PaymentRepo, repo.UserRepo, client, txManager, cfg)

	return &Services{
		AuthService:    authService,
		OrderService:   orderService,
		PaymentService: paymentService,
	}
}
