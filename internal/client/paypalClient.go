package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-web/internal/cart"
	"storefront-web/internal/config"
	"storefront-web/internal/model"

	"github.com/shopspring/decimal"
)

// PaypalClient talks to the PayPal Orders v2 api on behalf of the checkout widget.
type PaypalClient interface {
	Method() string
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*model.ProviderOrder, error)
	Capture(ctx context.Context, approval model.Approval) (*model.CaptureDetails, error)
}

type paypalClientImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
	currency           string
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:         strings.TrimRight(paypalCfg.BaseApiURL, "/"),
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
		currency:           paypalCfg.Currency,
	}
}

func (c *paypalClientImpl) Method() string {
	return model.PaymentMethodPayPal
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal oauth error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode paypal token: %w", err)
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, amount decimal.Decimal) (*model.ProviderOrder, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	value := cart.FormatAmount(amount)
	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []model.PurchaseUnit{
			{
				Amount: &model.Amount{
					Currency: c.currency,
					Value:    value,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	var result model.PaypalResult
	if err := c.post(ctx, accessToken, c.baseApiURL+"/v2/checkout/orders", body, &result); err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}

	return &model.ProviderOrder{
		ID:         result.ID,
		Amount:     value,
		Currency:   c.currency,
		ApproveURL: _extractApproveURL(result.Links),
	}, nil
}

func (c *paypalClientImpl) Capture(ctx context.Context, approval model.Approval) (*model.CaptureDetails, error) {
	if approval.OrderID == "" {
		return nil, fmt.Errorf("missing paypal order id")
	}

	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	captureURL := fmt.Sprintf(
		"%s/v2/checkout/orders/%s/capture",
		c.baseApiURL,
		url.PathEscape(approval.OrderID),
	)

	var result model.PaypalResult
	if err := c.post(ctx, accessToken, captureURL, nil, &result); err != nil {
		return nil, fmt.Errorf("paypal capture order: %w", err)
	}

	details := &model.CaptureDetails{
		ID:      result.ID,
		Status:  result.Status,
		PayerID: result.Payer.PayerID,
	}
	for _, unit := range result.PurchaseUnits {
		if unit.Payments == nil {
			continue
		}
		for _, capture := range unit.Payments.Captures {
			details.ID = capture.ID
			details.Status = capture.Status
			details.Amount = capture.Amount.Value
		}
	}

	return details, nil
}

func (c *paypalClientImpl) post(ctx context.Context, accessToken, endpoint string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode paypal response: %w", err)
	}
	return nil
}

func _extractApproveURL(links []model.PaypalLink) string {
	for _, link := range links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}
