// Package paymentservice reconciles asynchronous payment-gateway
// webhooks into the balance ledger. Each gateway has its own signature
// scheme; all of them funnel into one dedup-then-credit path so a
// redelivered webhook never credits twice.
package paymentservice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/proxyluxe/backend/internal/config"
	"github.com/proxyluxe/backend/internal/domain"
	"github.com/proxyluxe/backend/internal/pg"
	"github.com/proxyluxe/backend/pkg/clients"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentRepo interface {
	FindRecent(ctx context.Context, userID string, price decimal.Decimal, method string, since time.Time) (*domain.Payment, error)
	FindByInv(ctx context.Context, inv string) (*domain.Payment, error)
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Payment, error)
}

type UserRepo interface {
	IncrementBalance(ctx context.Context, userID string, amount decimal.Decimal) error
}

var (
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrMalformedNotification = errors.New("malformed notification")
	ErrGatewayUnavailable    = errors.New("payment gateway unavailable")
)

// dedupWindow is how long an identical (user, amount, method) triple is
// treated as a redelivery of the same payment.
const dedupWindow = 4 * time.Hour

const (
	payeerURL             = "https://payeer.com/ajax/api/api.php"
	digisellerAPIURL      = "https://api.digiseller.com/api"
	digisellerFallbackURL = "https://oplata.info/api"
)

type Service struct {
	paymentRepo PaymentRepo
	userRepo    UserRepo
	client      clients.HTTPClientI
	txManager   pg.TXManager
	cfg         *config.Config
	now         func() time.Time

	payeerAPI     string
	digisellerAPI string
	digisellerAlt string

	mu    sync.Mutex
	locks map[string]*creditLock
}

// creditLock serializes concurrent deliveries of one payment. The refs
// count lets release evict the map entry once the last holder is done,
// so the map does not grow with every distinct payment ever seen.
type creditLock struct {
	mu   sync.Mutex
	refs int
}

func New(paymentRepo PaymentRepo, userRepo UserRepo, client clients.HTTPClientI, txManager pg.TXManager, cfg *config.Config) *Service {
	return &Service{
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		client:        client,
		txManager:     txManager,
		cfg:           cfg,
		now:           time.Now,
		payeerAPI:     payeerURL,
		digisellerAPI: digisellerAPIURL,
		digisellerAlt: digisellerFallbackURL,
		locks:         make(map[string]*creditLock),
	}
}

// WebMoneyNotification carries the LMI_* fields of a WebMoney result
// callback plus the user id from the success URL.
type WebMoneyNotification struct {
	UserID     string
	PayeePurse string
	Amount     string
	PaymentNo  string
	Mode       string
	InvsNo     string
	TransNo    string
	TransDate  string
	PayerPurse string
	PayerWM    string
	Hash2      string
}

// HandleWebMoney verifies LMI_HASH2 and credits the payment. A bad
// signature is rejected with no side effects and no hint about whether
// the payment or user exists.
func (s *Service) HandleWebMoney(ctx context.Context, n WebMoneyNotification) (*domain.Payment, error) {
	signString := strings.Join([]string{
		n.PayeePurse, n.Amount, n.PaymentNo, n.Mode, n.InvsNo, n.TransNo,
		n.TransDate, s.cfg.WebMoneySecret, n.PayerPurse, n.PayerWM,
	}, ";")
	expected := strings.ToUpper(sha256Hex(signString))
	if !strings.EqualFold(expected, n.Hash2) {
		zap.L().Warn("webmoney signature mismatch", zap.String("paymentNo", n.PaymentNo))
		return nil, ErrInvalidSignature
	}

	amount, err := decimal.NewFromString(n.Amount)
	if err != nil || n.UserID == "" {
		return nil, fmt.Errorf("%w: bad amount or user id", ErrMalformedNotification)
	}
	return s.credit(ctx, n.UserID, amount, domain.MethodWebMoney, nil)
}

// PayeerNotification mirrors the m_* fields of a Payeer status
// callback.
type PayeerNotification struct {
	OperationID      string
	OperationPS      string
	OperationDate    string
	OperationPayDate string
	Shop             string
	OrderID          string
	Amount           string
	Currency         string
	Description      string
	Status           string
	Sign             string
}

// HandlePayeer verifies m_sign and credits the payment. The user id is
// the m_orderid prefix before the "A" separator.
func (s *Service) HandlePayeer(ctx context.Context, n PayeerNotification) (*domain.Payment, error) {
	signString := strings.Join([]string{
		n.OperationID, n.OperationPS, n.OperationDate, n.OperationPayDate,
		n.Shop, n.OrderID, n.Amount, n.Currency, n.Description, n.Status,
		s.cfg.PayeerMerchantPass,
	}, ":")
	if !strings.EqualFold(sha256Hex(signString), n.Sign) {
		zap.L().Warn("payeer signature mismatch", zap.String("orderID", n.OrderID))
		return nil, ErrInvalidSignature
	}
	if n.Status != "success" {
		return nil, fmt.Errorf("%w: status %q", ErrMalformedNotification, n.Status)
	}

	userID := strings.Split(n.OrderID, "A")[0]
	amount, err := decimal.NewFromString(n.Amount)
	if err != nil || userID == "" {
		return nil, fmt.Errorf("%w: bad amount or order id", ErrMalformedNotification)
	}
	return s.credit(ctx, userID, amount, domain.MethodPayeer, nil)
}

type digisellerPurchase struct {
	Options []struct {
		Value string `json:"value"`
	} `json:"options"`
	AmountUSD json.Number `json:"amount_usd"`
	Lang      string      `json:"lang"`
	Inv       json.Number `json:"inv"`
}

// HandleDigiseller authenticates against the Digiseller API, fetches
// the purchase by its unique code and credits it. Returns the buyer's
// lang for the post-payment redirect.
func (s *Service) HandleDigiseller(ctx context.Context, uniqueCode string) (*domain.Payment, string, error) {
	token, err := s.digisellerToken()
	if err != nil {
		return nil, "", err
	}

	purchase, err := s.fetchPurchase(s.digisellerAPI, uniqueCode, token)
	if err != nil {
		// The API host intermittently rejects valid codes; the mirror is
		// the one sanctioned local retry.
		zap.L().Warn("digiseller purchase fetch failed, trying mirror", zap.Error(err))
		purchase, err = s.fetchPurchase(s.digisellerAlt, uniqueCode, token)
	}
	if err != nil {
		return nil, "", err
	}

	if len(purchase.Options) == 0 {
		return nil, "", fmt.Errorf("%w: purchase without buyer options", ErrMalformedNotification)
	}
	userID := purchase.Options[0].Value
	amount, err := decimal.NewFromString(purchase.AmountUSD.String())
	if err != nil || userID == "" {
		return nil, "", fmt.Errorf("%w: bad amount or user id", ErrMalformedNotification)
	}

	inv := purchase.Inv.String()
	if inv == "" {
		inv = uniqueCode
	}
	payment, err := s.credit(ctx, userID, amount, domain.MethodDigiseller, &inv)
	if err != nil {
		return nil, "", err
	}

	lang := "en"
	if strings.HasPrefix(purchase.Lang, "ru") {
		lang = "ru"
	}
	return payment, lang, nil
}

func (s *Service) digisellerToken() (string, error) {
	timestamp := s.now().Unix()
	payload, _ := json.Marshal(map[string]interface{}{
		"seller_id": s.cfg.DigisellerID,
		"timestamp": timestamp,
		"sign":      sha256Hex(s.cfg.DigisellerKey + strconv.FormatInt(timestamp, 10)),
	})
	status, body, _, err := s.client.Post(s.digisellerAPI+"/apilogin", payload, nil)
	if err != nil || status != 200 {
		zap.L().Error("digiseller login failed", zap.Int("status", status), zap.Error(err))
		return "", fmt.Errorf("%w: apilogin", ErrGatewayUnavailable)
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Token == "" {
		return "", fmt.Errorf("%w: apilogin response", ErrGatewayUnavailable)
	}
	return resp.Token, nil
}

func (s *Service) fetchPurchase(base, uniqueCode, token string) (*digisellerPurchase, error) {
	status, body, _, err := s.client.Get(base+"/purchases/unique-code/"+uniqueCode+"?token="+token, nil)
	if err != nil || status != 200 {
		return nil, fmt.Errorf("%w: purchase fetch", ErrGatewayUnavailable)
	}
	var purchase digisellerPurchase
	if err := json.Unmarshal(body, &purchase); err != nil {
		return nil, fmt.Errorf("%w: purchase response", ErrGatewayUnavailable)
	}
	return &purchase, nil
}

// CreateInvoice asks Payeer for a hosted payment page. The order id
// embeds the user id before an "A" separator so the webhook can route
// the credit back.
func (s *Service) CreateInvoice(ctx context.Context, userID string, amount decimal.Decimal, currency string) (string, error) {
	orderID := fmt.Sprintf("%sA%d", userID, 100+rand.Intn(900))

	params := url.Values{}
	params.Set("account", s.cfg.PayeerAccount)
	params.Set("apiId", s.cfg.PayeerAPIID)
	params.Set("apiPass", s.cfg.PayeerAPISecret)
	params.Set("m_shop", s.cfg.PayeerMerchantID)
	params.Set("action", "invoiceCreate")
	params.Set("m_orderid", orderID)
	params.Set("m_amount", amount.String())
	params.Set("m_curr", currency)
	params.Set("m_desc", "Balance top-up")

	status, body, _, err := s.client.Post(s.payeerAPI+"?"+params.Encode(), nil, nil)
	if err != nil || status != 200 {
		zap.L().Error("payeer invoice creation failed", zap.Int("status", status), zap.Error(err))
		return "", fmt.Errorf("%w: invoiceCreate", ErrGatewayUnavailable)
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.URL == "" {
		return "", fmt.Errorf("%w: invoiceCreate response", ErrGatewayUnavailable)
	}
	return resp.URL, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]domain.Payment, error) {
	return s.paymentRepo.FindByUserID(ctx, userID)
}

// credit is the single dedup-then-credit path shared by all gateways.
// Concurrent deliveries of the same payment serialize on a per
// (user, method, amount) mutex, and the dedup check plus the balance
// increment run in one transaction.
func (s *Service) credit(ctx context.Context, userID string, amount decimal.Decimal, method string, inv *string) (*domain.Payment, error) {
	lock, key := s.lockFor(userID, method, amount)
	lock.mu.Lock()
	defer s.release(lock, key)

	var payment *domain.Payment
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if inv != nil {
			existing, err := s.paymentRepo.FindByInv(ctx, *inv)
			if err != nil {
				return err
			}
			if existing != nil {
				zap.L().Info("duplicate payment by inv", zap.String("inv", *inv))
				payment = existing
				return nil
			}
		}

		existing, err := s.paymentRepo.FindRecent(ctx, userID, amount, method, s.now().Add(-dedupWindow))
		if err != nil {
			return err
		}
		if existing != nil {
			zap.L().Info("duplicate payment inside dedup window",
				zap.String("userID", userID),
				zap.String("method", method),
				zap.String("amount", amount.String()))
			payment = existing
			return nil
		}

		if err := s.userRepo.IncrementBalance(ctx, userID, amount); err != nil {
			return err
		}
		payment, err = s.paymentRepo.Create(ctx, &domain.Payment{
			UserID: userID,
			Price:  amount,
			Method: method,
			Inv:    inv,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("payment reconciled",
		zap.String("userID", userID),
		zap.String("method", method),
		zap.String("amount", amount.String()))
	return payment, nil
}

func (s *Service) lockFor(userID, method string, amount decimal.Decimal) (*creditLock, string) {
	key := userID + "|" + method + "|" + amount.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &creditLock{}
		s.locks[key] = lock
	}
	lock.refs++
	return lock, key
}

func (s *Service) release(lock *creditLock, key string) {
	lock.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, key)
	}
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
