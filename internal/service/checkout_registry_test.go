package service

import (
	"context"
	"testing"
	"time"

	"storefront-web/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistry() (*CheckoutRegistry, *memoryCartStore) {
	store := newMemoryCartStore()
	registry := NewCheckoutRegistry(store, &fakeOrders{}, &fakeProvider{}, &fakePublisher{}, CheckoutOptions{
		RedirectDelay: 2 * time.Second,
	})
	return registry, store
}

func TestCheckoutRegistry_Get(t *testing.T) {
	registry, store := setupRegistry()
	require.NoError(t, store.Save(context.Background(), "a", chairCart()))

	first := registry.Get("a", 1)
	assert.Same(t, first, registry.Get("a", 1))
	assert.NotSame(t, first, registry.Get("b", 1))
	assert.Equal(t, 2, registry.Len())

	view := first.Mount(context.Background())
	assert.Equal(t, CheckoutReady, view.State)

	other := registry.Get("a", 2)
	assert.NotSame(t, first, other)
	assert.Equal(t, int64(2), other.opts.UserID)
	assert.Equal(t, CheckoutLoading, other.State())
}

func TestCheckoutRegistry_UserChangeWhileSubmitting(t *testing.T) {
	store := newMemoryCartStore()
	require.NoError(t, store.Save(context.Background(), "a", chairCart()))
	orders := &fakeOrders{result: &model.OrderResult{OrderID: 77}, block: make(chan struct{})}
	registry := NewCheckoutRegistry(store, orders, &fakeProvider{}, &fakePublisher{}, CheckoutOptions{})
	ctx := context.Background()

	first := registry.Get("a", 1)
	first.Mount(ctx)
	order, err := first.CreateOrder(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := first.Approve(ctx, model.Approval{OrderID: order.ID})
		done <- err
	}()
	require.Eventually(t, func() bool {
		return first.State() == CheckoutSubmitting && orders.calls() == 1
	}, time.Second, 5*time.Millisecond)

	same := registry.Get("a", 2)
	assert.Same(t, first, same)
	_, err = same.Approve(ctx, model.Approval{OrderID: order.ID})
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(orders.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, orders.calls())

	// once the submission settles the new user gets a flow of their own
	other := registry.Get("a", 2)
	assert.NotSame(t, first, other)
	assert.Equal(t, int64(2), other.opts.UserID)
}

func TestCheckoutRegistry_Forget(t *testing.T) {
	registry, _ := setupRegistry()

	first := registry.Get("a", 1)
	registry.Forget("a")

	assert.Zero(t, registry.Len())
	assert.NotSame(t, first, registry.Get("a", 1))
}

func TestCheckoutRegistry_Sweep(t *testing.T) {
	registry, _ := setupRegistry()

	idle := registry.Get("idle", 1)
	idle.lastSeen = time.Now().Add(-2 * time.Hour)

	busy := registry.Get("busy", 1)
	busy.lastSeen = time.Now().Add(-2 * time.Hour)
	busy.state = CheckoutSubmitting

	registry.Get("fresh", 1)

	assert.Equal(t, 1, registry.Sweep(time.Hour))
	assert.Equal(t, 2, registry.Len())
	assert.Same(t, busy, registry.Get("busy", 1))
}
