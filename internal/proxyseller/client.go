// Package proxyseller wraps the upstream proxy-seller HTTP API: order
// placement, reference data, resident sub-user packages and
// prolongation. It is the only gateway to external inventory.
package proxyseller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/proxyluxe/backend/internal/config"
	"github.com/proxyluxe/backend/internal/domain"
	"github.com/proxyluxe/backend/pkg/clients"
	"go.uber.org/zap"
)

var (
	// ErrUpstream covers transport failures and error-status envelopes;
	// callers treat it as retryable.
	ErrUpstream = errors.New("proxy-seller upstream error")
	// ErrBadResponse marks a 2xx body whose shape is not the documented
	// envelope.
	ErrBadResponse = errors.New("unexpected proxy-seller response")
)

const statusSuccess = "success"

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// envelope is the provider's uniform response wrapper.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Errors []apiError      `json:"errors"`
}

type ReferenceItem struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Personal bool   `json:"personal"`
}

type Target struct {
	SectionID int    `json:"sectionId"`
	Name      string `json:"name"`
}

// Reference is the per-type catalog used to resolve ids for order
// payloads.
type Reference struct {
	Countries []ReferenceItem `json:"country"`
	Periods   []ReferenceItem `json:"period"`
	Tariffs   []ReferenceItem `json:"tarifs"`
	Targets   []Target        `json:"target"`
}

// OrderInfo carries everything PlaceOrder needs. ExistingPackageKeys
// lists resident package keys the buyer already owns, so an existing
// package is extended instead of duplicated.
type OrderInfo struct {
	Type                string
	Tariff              *string
	TariffID            *int
	CountryID           *int
	PeriodID            *int
	Quantity            *int
	Protocol            *string
	CustomTargetName    *string
	ExistingPackageKeys []string
}

// Placement is the provisioning result. PackageKey is set only for
// resident orders.
type Placement struct {
	OrderID    string
	PackageKey *string
}

type Package struct {
	PackageKey   string `json:"package_key"`
	TrafficLimit string `json:"traffic_limit"`
	IsActive     bool   `json:"is_active"`
}

type Client struct {
	url    string
	client clients.HTTPClientI
	now    func() time.Time
}

func New(cfg *config.Config, client clients.HTTPClientI) *Client {
	return &Client{
		url:    cfg.ProxySellerAddress + "/" + cfg.ProxySellerKey,
		client: client,
		now:    time.Now,
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	status, body, _, err := c.client.Get(c.url+path, nil)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrUpstream, path, err)
	}
	return c.decode(path, status, body, out)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("can't encode payload for %s: %w", path, err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	status, respBody, _, err := c.client.Post(c.url+path, body, headers)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", ErrUpstream, path, err)
	}
	return c.decode(path, status, respBody, out)
}

func (c *Client) decode(path string, status int, body []byte, out interface{}) error {
	if status != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrUpstream, path, status)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadResponse, path, err)
	}
	if env.Status != statusSuccess {
		msg := "no error details"
		if len(env.Errors) > 0 {
			msg = env.Errors[0].Message
		}
		return fmt.Errorf("%w: %s: %s", ErrUpstream, path, msg)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: %s data: %v", ErrBadResponse, path, err)
		}
	}
	return nil
}

// GetReferenceByType fetches the catalog for one proxy kind.
func (c *Client) GetReferenceByType(ctx context.Context, proxyType string) (*Reference, error) {
	var data struct {
		Items Reference `json:"items"`
	}
	if err := c.get(ctx, "/reference/list/"+proxyType, &data); err != nil {
		zap.L().Error("can't fetch reference data", zap.String("type", proxyType), zap.Error(err))
		return nil, err
	}
	return &data.Items, nil
}

type orderMakeData struct {
	OrderID json.Number `json:"orderId"`
}

// PlaceOrder acquires inventory for one order. Non-resident kinds are
// a single order/make call; resident kinds additionally create or
// extend the buyer's sub-user package.
func (c *Client) PlaceOrder(ctx context.Context, info OrderInfo) (*Placement, error) {
	if info.Type != domain.TypeResident {
		payload := map[string]interface{}{
			"countryId": info.CountryID,
			"periodId":  info.PeriodID,
			"quantity":  info.Quantity,
			"paymentId": 1,
		}
		if info.Protocol != nil {
			payload["protocol"] = *info.Protocol
		}
		if info.CustomTargetName != nil {
			payload["customTargetName"] = *info.CustomTargetName
		}

		var data orderMakeData
		if err := c.post(ctx, "/order/make", payload, &data); err != nil {
			return nil, err
		}
		return &Placement{OrderID: data.OrderID.String()}, nil
	}

	return c.placeResidentOrder(ctx, info)
}

func (c *Client) placeResidentOrder(ctx context.Context, info OrderInfo) (*Placement, error) {
	if info.Tariff == nil || info.TariffID == nil {
		return nil, fmt.Errorf("%w: resident order without tariff", ErrBadResponse)
	}

	var orderData orderMakeData
	err := c.post(ctx, "/order/make", map[string]interface{}{
		"tarifId":   *info.TariffID,
		"paymentId": 1,
	}, &orderData)
	if err != nil {
		return nil, err
	}

	tariffBytes, err := ConvertToBytes(*info.Tariff)
	if err != nil {
		return nil, err
	}

	existing, err := c.findOwnedPackage(ctx, info.ExistingPackageKeys)
	if err != nil {
		return nil, err
	}

	var pkgData struct {
		PackageKey string `json:"package_key"`
	}
	if existing != nil {
		// Extend the package the user already owns: traffic is additive,
		// expiry must land strictly inside (now, now+1 month).
		current, convErr := strconv.ParseInt(existing.TrafficLimit, 10, 64)
		if convErr != nil {
			return nil, fmt.Errorf("%w: package %s traffic_limit %q", ErrBadResponse, existing.PackageKey, existing.TrafficLimit)
		}
		err = c.post(ctx, "/residentsubuser/update", map[string]interface{}{
			"package_key":   existing.PackageKey,
			"traffic_limit": strconv.FormatInt(current+tariffBytes, 10),
			"expired_at":    PackageExpiry(c.now()).Format(domain.EndDateLayout),
			"is_active":     true,
			"is_link_date":  false,
		}, &pkgData)
	} else {
		err = c.post(ctx, "/residentsubuser/create", map[string]interface{}{
			"traffic_limit": strconv.FormatInt(tariffBytes, 10),
			"rotation":      1,
			"is_active":     true,
			"is_link_date":  false,
		}, &pkgData)
	}
	if err != nil {
		return nil, err
	}

	return &Placement{
		OrderID:    orderData.OrderID.String(),
		PackageKey: &pkgData.PackageKey,
	}, nil
}

func (c *Client) findOwnedPackage(ctx context.Context, keys []string) (*Package, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	var packages []Package
	if err := c.get(ctx, "/residentsubuser/packages", &packages); err != nil {
		return nil, err
	}

	owned := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		owned[key] = struct{}{}
	}
	for i := range packages {
		if _, ok := owned[packages[i].PackageKey]; ok {
			return &packages[i], nil
		}
	}
	return nil, nil
}

// Prolong extends already-provisioned inventory upstream.
func (c *Client) Prolong(ctx context.Context, proxyType string, ids []string, periodID int) error {
	return c.post(ctx, "/prolong/make/"+proxyType, map[string]interface{}{
		"ids":       ids,
		"periodId":  periodID,
		"paymentId": "1",
	}, nil)
}

// AddAuthIP authorizes an extra IP on an existing upstream order.
func (c *Client) AddAuthIP(ctx context.Context, orderNumber, ip string) error {
	if len(strings.Split(ip, ".")) != 4 {
		return fmt.Errorf("invalid ip format: %q", ip)
	}
	return c.post(ctx, "/auth/add/ip", map[string]interface{}{
		"orderNumber": orderNumber,
		"ip":          ip,
	}, nil)
}
