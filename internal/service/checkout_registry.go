package service

import (
	"sync"
	"time"

	"storefront-web/internal/repository"

	log "github.com/sirupsen/logrus"
)

// CheckoutRegistry keeps one Checkout per browsing session so its state survives
// between the widget callbacks, which arrive as separate requests.
type CheckoutRegistry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry

	store     repository.CartStore
	orders    OrderSubmitter
	provider  PaymentProvider
	publisher EventPublisher
	opts      CheckoutOptions
}

type registryEntry struct {
	userID   int64
	checkout *Checkout
}

func NewCheckoutRegistry(
	store repository.CartStore,
	orders OrderSubmitter,
	provider PaymentProvider,
	publisher EventPublisher,
	opts CheckoutOptions,
) *CheckoutRegistry {
	return &CheckoutRegistry{
		sessions:  make(map[string]*registryEntry),
		store:     store,
		orders:    orders,
		provider:  provider,
		publisher: publisher,
		opts:      opts,
	}
}

// Get returns the session's checkout, creating it on first use. A different user on the
// same session starts a new flow, except while an order is being submitted: that flow is
// returned as is so its in-flight guard keeps refusing a second submission.
func (r *CheckoutRegistry) Get(sessionKey string, userID int64) *Checkout {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[sessionKey]
	if ok && entry.userID == userID {
		return entry.checkout
	}
	if ok && entry.checkout.State() == CheckoutSubmitting {
		log.WithFields(log.Fields{
			"session":  sessionKey,
			"user_id":  userID,
			"owner_id": entry.userID,
		}).Warn("user changed while an order is being submitted, keeping the current checkout")
		return entry.checkout
	}

	opts := r.opts
	opts.UserID = userID
	checkout := NewCheckout(
		repository.ForSession(r.store, sessionKey),
		r.orders,
		r.provider,
		r.publisher,
		opts,
	)
	r.sessions[sessionKey] = &registryEntry{
		userID:   userID,
		checkout: checkout,
	}
	return checkout
}

func (r *CheckoutRegistry) Forget(sessionKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionKey)
}

// Sweep drops checkouts idle for longer than maxIdle, unless they are submitting.
func (r *CheckoutRegistry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for key, entry := range r.sessions {
		if entry.checkout.State() == CheckoutSubmitting {
			continue
		}
		if entry.checkout.idleSince().Before(cutoff) {
			delete(r.sessions, key)
			removed++
		}
	}
	return removed
}

func (r *CheckoutRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
