package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/proxyluxe/backend/docs"
	authhandlers "github.com/proxyluxe/backend/internal/handlers/auth"
	ordershandlers "github.com/proxyluxe/backend/internal/handlers/orders"
	paymenthandlers "github.com/proxyluxe/backend/internal/handlers/payment"
	"github.com/proxyluxe/backend/internal/service"
	"github.com/proxyluxe/backend/pkg/auth"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	GetOrders(w http.ResponseWriter, r *http.Request)
	FinishOrder(w http.ResponseWriter, r *http.Request)
	ProlongOrder(w http.ResponseWriter, r *http.Request)
	DeleteOrder(w http.ResponseWriter, r *http.Request)
	CheckPromocode(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	WebMoneyResult(w http.ResponseWriter, r *http.Request)
	PayeerStatus(w http.ResponseWriter, r *http.Request)
	DigisellerReturn(w http.ResponseWriter, r *http.Request)
	CreateInvoice(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler    AuthHandler
	OrderHandler   OrderHandler
	PaymentHandler PaymentHandler

	jwtService auth.JWTServiceInterface
}

func New(s *service.Services, jwtService auth.JWTServiceInterface) *Handlers {
	return &Handlers{
		AuthHandler:    authhandlers.New(s.AuthService),
		OrderHandler:   ordershandlers.New(s.OrderService),
		PaymentHandler: paymenthandlers.New(s.PaymentService),
		jwtService:     jwtService,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.AuthHandler.Register)
		r.Post("/auth/login", h.AuthHandler.Login)

		// Gateway callbacks authenticate by signature, not by JWT.
		r.Post("/payment/webmoney", h.PaymentHandler.WebMoneyResult)
		r.Post("/payment/payeer", h.PaymentHandler.PayeerStatus)
		r.Get("/payment/digiseller", h.PaymentHandler.DigisellerReturn)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(h.jwtService))
			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.OrderHandler.CreateOrder)
				r.Get("/", h.OrderHandler.GetOrders)
				r.Post("/finish", h.OrderHandler.FinishOrder)
				r.Post("/prolong", h.OrderHandler.ProlongOrder)
				r.Post("/promocode", h.OrderHandler.CheckPromocode)
				r.Delete("/{orderID}", h.OrderHandler.DeleteOrder)
			})
			r.Route("/payment", func(r chi.Router) {
				r.Post("/invoice", h.PaymentHandler.CreateInvoice)
				r.Get("/history", h.PaymentHandler.GetHistory)
			})
		})
	})

	return r
}
