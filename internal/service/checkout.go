package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-web/internal/cart"
	"storefront-web/internal/client"
	"storefront-web/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CheckoutState string

const (
	CheckoutLoading    CheckoutState = "loading"
	CheckoutEmpty      CheckoutState = "empty"
	CheckoutReady      CheckoutState = "ready"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSuccess    CheckoutState = "success"
	CheckoutFailed     CheckoutState = "failed"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrSubmitInFlight   = errors.New("order submission already in progress")
	ErrCheckoutComplete = errors.New("checkout already completed")
	ErrStaleOrder       = errors.New("approval does not match the issued payment order")
)

const (
	msgEmptyCart       = "Your cart is empty."
	msgSubmitInFlight  = "Your order is already being submitted."
	msgPaymentFailed   = "Payment could not be completed. Please try again."
	msgOrderFailed     = "Failed to create order."
	msgServerUnreached = "Unable to reach the store. Please try again."
	msgStaleOrder      = "Your cart changed during payment. Please review your order and pay again."
)

const defaultPublishTimeout = 5 * time.Second

// PaymentProvider is the external payment widget seen from the server: orderCreate,
// and the capture that follows onApprove.
type PaymentProvider interface {
	Method() string
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*model.ProviderOrder, error)
	Capture(ctx context.Context, approval model.Approval) (*model.CaptureDetails, error)
}

type OrderSubmitter interface {
	CreateOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResult, error)
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event model.OrderPlaced) error
}

// CheckoutCart is the session cart as the checkout sees it.
type CheckoutCart interface {
	Load(ctx context.Context) model.Cart
	Clear(ctx context.Context) error
}

type CheckoutOptions struct {
	UserID         int64
	RedirectDelay  time.Duration
	SubmitTimeout  time.Duration
	PublishTimeout time.Duration
}

// WidgetBinding identifies the payment widget instance attached to the current cart.
// The key only changes when the cart turns non-empty or its total moves.
type WidgetBinding struct {
	Key    string `json:"key"`
	Amount string `json:"amount"`
	Fresh  bool   `json:"fresh"`
}

type Redirect struct {
	To      string `json:"to"`
	AfterMS int64  `json:"after_ms"`
}

type CheckoutView struct {
	State        CheckoutState       `json:"state"`
	Cart         model.Cart          `json:"cart"`
	Total        string              `json:"total"`
	Widget       *WidgetBinding      `json:"widget,omitempty"`
	Notification *model.Notification `json:"notification,omitempty"`
	Redirect     *Redirect           `json:"redirect,omitempty"`
	OrderID      int64               `json:"order_id,omitempty"`
}

// Checkout drives one session through Loading -> Empty|Ready -> Submitting -> Success|Failed.
// Events of a session are serialized; the lock is released while the provider and the
// order api are called so a second approval sees Submitting and is refused.
type Checkout struct {
	mu sync.Mutex

	cart      CheckoutCart
	orders    OrderSubmitter
	provider  PaymentProvider
	publisher EventPublisher
	opts      CheckoutOptions

	state        CheckoutState
	snapshot     model.Cart
	widget       *WidgetBinding
	notification *model.Notification
	redirect     *Redirect
	orderID      int64
	issued       *issuedOrder
	lastSeen     time.Time
}

// issuedOrder is the last provider order handed to the widget and the total it was created for.
type issuedOrder struct {
	id     string
	amount string
}

func NewCheckout(
	cartStore CheckoutCart,
	orders OrderSubmitter,
	provider PaymentProvider,
	publisher EventPublisher,
	opts CheckoutOptions,
) *Checkout {
	return &Checkout{
		cart:      cartStore,
		orders:    orders,
		provider:  provider,
		publisher: publisher,
		opts:      opts,
		state:     CheckoutLoading,
		lastSeen:  time.Now(),
	}
}

func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mount loads the cart and renders the summary. An in-flight submission is left alone.
func (c *Checkout) Mount(ctx context.Context) CheckoutView {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.state == CheckoutSubmitting {
		return c.viewLocked()
	}

	c.state = CheckoutLoading
	c.redirect = nil
	c.orderID = 0
	c.reloadLocked(ctx)

	return c.viewLocked()
}

// View is the current state without touching the store.
func (c *Checkout) View() CheckoutView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Checkout) DismissNotification() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notification = nil
}

// CreateOrder answers the widget's orderCreate callback. The total is recomputed from the
// stored cart on every call and the issued order is remembered for Approve.
func (c *Checkout) CreateOrder(ctx context.Context) (*model.ProviderOrder, error) {
	c.mu.Lock()
	c.touch()

	switch c.state {
	case CheckoutSubmitting:
		n := model.Notify(model.SeverityWarning, msgSubmitInFlight)
		c.notification = &n
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	case CheckoutSuccess:
		c.mu.Unlock()
		return nil, ErrCheckoutComplete
	}

	c.reloadLocked(ctx)
	if c.state == CheckoutEmpty {
		n := model.Notify(model.SeverityWarning, msgEmptyCart)
		c.notification = &n
		c.mu.Unlock()
		return nil, ErrEmptyCart
	}
	total := cart.ComputeTotal(c.snapshot)
	c.issued = nil
	c.mu.Unlock()

	order, err := c.provider.CreateOrder(ctx, total)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.WithError(err).WithField("amount", cart.FormatAmount(total)).Error("payment provider create order")
		c.failLocked(msgPaymentFailed)
		return nil, fmt.Errorf("provider create order: %w", err)
	}
	if c.state == CheckoutReady || c.state == CheckoutFailed {
		c.issued = &issuedOrder{
			id:     order.ID,
			amount: cart.FormatAmount(total),
		}
	}

	return order, nil
}

// Approve handles onApprove: capture the funds, then submit the order built from the
// current cart. The approval must name the last issued provider order and the cart total must
// still be the one that order was created for, otherwise nothing is captured and the shopper
// has to pay again. On success the cart is cleared; on failure it is left untouched.
func (c *Checkout) Approve(ctx context.Context, approval model.Approval) (CheckoutView, error) {
	c.mu.Lock()
	c.touch()

	switch c.state {
	case CheckoutSubmitting:
		n := model.Notify(model.SeverityWarning, msgSubmitInFlight)
		c.notification = &n
		view := c.viewLocked()
		c.mu.Unlock()
		return view, ErrSubmitInFlight
	case CheckoutSuccess:
		view := c.viewLocked()
		c.mu.Unlock()
		return view, ErrCheckoutComplete
	}

	c.reloadLocked(ctx)
	if c.state == CheckoutEmpty {
		n := model.Notify(model.SeverityWarning, msgEmptyCart)
		c.notification = &n
		view := c.viewLocked()
		c.mu.Unlock()
		return view, ErrEmptyCart
	}

	items := c.snapshot
	total := cart.FormatAmount(cart.ComputeTotal(items))

	issued := c.issued
	c.issued = nil
	if issued == nil || issued.id != approval.OrderID || issued.amount != total {
		fields := log.Fields{
			"provider_order": approval.OrderID,
			"total":          total,
		}
		if issued != nil {
			fields["issued_order"] = issued.id
			fields["issued_amount"] = issued.amount
		}
		log.WithFields(fields).Warn("approval does not match the issued payment order")
		c.failLocked(msgStaleOrder)
		view := c.viewLocked()
		c.mu.Unlock()
		return view, ErrStaleOrder
	}

	c.state = CheckoutSubmitting
	c.notification = nil
	c.mu.Unlock()

	result, capture, err := c.submit(ctx, approval, items, total)

	c.mu.Lock()
	if err != nil {
		c.failLocked(userMessage(err))
		view := c.viewLocked()
		c.mu.Unlock()
		return view, err
	}

	if errClear := c.cart.Clear(ctx); errClear != nil {
		log.WithError(errClear).WithField("order_id", result.OrderID).Warn("clear cart after order")
	}

	c.state = CheckoutSuccess
	c.snapshot = model.Cart{}
	c.widget = nil
	c.orderID = result.OrderID
	n := model.Notify(model.SeveritySuccess, fmt.Sprintf("Order placed successfully! Order ID: %d", result.OrderID))
	c.notification = &n
	c.redirect = &Redirect{
		To:      "/",
		AfterMS: c.opts.RedirectDelay.Milliseconds(),
	}

	view := c.viewLocked()
	c.mu.Unlock()

	c.publish(ctx, model.OrderPlaced{
		OrderID:       result.OrderID,
		UserID:        c.opts.UserID,
		PaymentMethod: c.provider.Method(),
		Total:         total,
		CaptureID:     capture.ID,
		Items:         items,
		PlacedAt:      time.Now().UTC(),
	})

	return view, nil
}

// Fail handles the widget's onError callback. The cart is not touched.
func (c *Checkout) Fail(message string) CheckoutView {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	log.WithField("message", message).Warn("payment widget reported an error")

	if message == "" {
		message = msgPaymentFailed
	}
	if c.state == CheckoutSuccess || c.state == CheckoutSubmitting {
		n := model.Notify(model.SeverityError, message)
		c.notification = &n
		return c.viewLocked()
	}

	c.issued = nil
	c.failLocked(message)
	return c.viewLocked()
}

type paymentError struct {
	err error
}

func (e *paymentError) Error() string { return "payment capture: " + e.err.Error() }
func (e *paymentError) Unwrap() error { return e.err }

func (c *Checkout) submit(ctx context.Context, approval model.Approval, items model.Cart, total string) (*model.OrderResult, *model.CaptureDetails, error) {
	if c.opts.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.SubmitTimeout)
		defer cancel()
	}

	approval.Amount = total
	capture, err := c.provider.Capture(ctx, approval)
	if err != nil {
		log.WithError(err).WithField("provider_order", approval.OrderID).Error("payment capture failed")
		return nil, nil, &paymentError{err: err}
	}

	log.WithFields(log.Fields{
		"capture_id":     capture.ID,
		"capture_status": capture.Status,
		"payer_id":       capture.PayerID,
		"amount":         capture.Amount,
	}).Info("payment captured")

	req := model.OrderRequest{
		UserID:        c.opts.UserID,
		PaymentMethod: c.provider.Method(),
		CartItems:     items,
	}
	result, err := c.orders.CreateOrder(ctx, req)
	if err != nil {
		log.WithError(err).WithField("user_id", c.opts.UserID).Error("submit order")
		return nil, nil, fmt.Errorf("submit order: %w", err)
	}

	log.WithFields(log.Fields{
		"order_id": result.OrderID,
		"user_id":  c.opts.UserID,
		"total":    total,
	}).Info("order placed")

	return result, capture, nil
}

// publish runs after the lock is released. The order is already placed, so the event outlives
// a cancelled request but not the publish timeout.
func (c *Checkout) publish(ctx context.Context, event model.OrderPlaced) {
	if c.publisher == nil {
		return
	}

	timeout := c.opts.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := c.publisher.PublishOrderPlaced(ctx, event); err != nil {
		log.WithError(err).WithField("order_id", event.OrderID).Warn("publish order placed event")
	}
}

// reloadLocked reads the cart and moves between Empty and Ready. Failed becomes Ready again,
// which is how a shopper retries.
func (c *Checkout) reloadLocked(ctx context.Context) {
	c.snapshot = c.cart.Load(ctx)

	if c.snapshot.IsEmpty() {
		c.state = CheckoutEmpty
		c.widget = nil
		return
	}

	c.state = CheckoutReady
	c.bindWidgetLocked()
}

func (c *Checkout) bindWidgetLocked() {
	amount := cart.FormatAmount(cart.ComputeTotal(c.snapshot))
	if c.widget != nil && c.widget.Amount == amount {
		c.widget.Fresh = false
		return
	}

	c.widget = &WidgetBinding{
		Key:    uuid.NewString(),
		Amount: amount,
		Fresh:  true,
	}
}

func (c *Checkout) failLocked(message string) {
	c.state = CheckoutFailed
	n := model.Notify(model.SeverityError, message)
	c.notification = &n
}

func (c *Checkout) viewLocked() CheckoutView {
	view := CheckoutView{
		State:        c.state,
		Cart:         c.snapshot,
		Total:        cart.FormatAmount(cart.ComputeTotal(c.snapshot)),
		Notification: c.notification,
		Redirect:     c.redirect,
		OrderID:      c.orderID,
	}
	if view.Cart == nil {
		view.Cart = model.Cart{}
	}
	if c.widget != nil && (c.state == CheckoutReady || c.state == CheckoutFailed) {
		w := *c.widget
		view.Widget = &w
	}
	return view
}

func (c *Checkout) touch() {
	c.lastSeen = time.Now()
}

func (c *Checkout) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// userMessage is the text shown for a failed checkout step.
func userMessage(err error) string {
	var payErr *paymentError
	if errors.As(err, &payErr) {
		return msgPaymentFailed
	}
	return errorMessage(err, msgOrderFailed)
}

// errorMessage prefers the api's own message, then a reachability hint, then the fallback.
func errorMessage(err error, fallback string) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return msgServerUnreached
	}
	return fallback
}
