package client

import (
	"context"
	"fmt"

	"storefront-web/internal/cart"
	"storefront-web/internal/config"
	"storefront-web/internal/model"

	"github.com/braintree-go/braintree-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PaymentMethodBraintree = "Braintree"

// --- INTERFACE ---

type BraintreeClient interface {
	Method() string

	// CreateOrder reserves a local reference for the drop-in; braintree has no pre-created order
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*model.ProviderOrder, error)

	// Capture charges the drop-in nonce for the amount of the approval
	Capture(ctx context.Context, approval model.Approval) (*model.CaptureDetails, error)
}

// --- IMPLEMENTATION ---

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

// NewBraintreeClient initializes the Braintree SDK gateway
func NewBraintreeClient(cfg *config.Braintree) BraintreeClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

// --- METHODS ---

func (c *braintreeClientImpl) Method() string {
	return PaymentMethodBraintree
}

func (c *braintreeClientImpl) CreateOrder(ctx context.Context, amount decimal.Decimal) (*model.ProviderOrder, error) {
	return &model.ProviderOrder{
		ID:     uuid.NewString(),
		Amount: cart.FormatAmount(amount),
	}, nil
}

func (c *braintreeClientImpl) Capture(ctx context.Context, approval model.Approval) (*model.CaptureDetails, error) {
	if approval.Nonce == "" {
		return nil, fmt.Errorf("missing payment method nonce")
	}

	btAmount, err := toBraintreeAmount(approval.Amount)
	if err != nil {
		return nil, err
	}

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             btAmount,
		OrderId:            approval.OrderID,
		PaymentMethodNonce: approval.Nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true, // Captures the funds immediately
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("transaction creation failed: %w", err)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined {
		return nil, fmt.Errorf("transaction declined by processor: %s", tx.ProcessorResponseText)
	}

	return &model.CaptureDetails{
		ID:     tx.Id,
		Status: string(tx.Status),
		Amount: approval.Amount,
	}, nil
}

// toBraintreeAmount converts "50.00" into braintree's NewDecimal(5000, 2).
func toBraintreeAmount(amount string) (*braintree.Decimal, error) {
	decAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if !decAmount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", amount)
	}

	cents := decAmount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return braintree.NewDecimal(cents, 2), nil
}
