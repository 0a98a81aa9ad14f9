package repository

import (
	"context"
	"encoding/json"

	"storefront-web/internal/model"

	log "github.com/sirupsen/logrus"
)

// CartStore keeps one serialized cart per browsing session. Load never fails: a missing or
// unreadable document is an empty cart. LoadForUpdate treats missing and unreadable documents the
// same way but reports backend failures, so a read-modify-write never overwrites a cart it could
// not read. Save replaces the whole document.
type CartStore interface {
	Load(ctx context.Context, sessionKey string) model.Cart
	LoadForUpdate(ctx context.Context, sessionKey string) (model.Cart, error)
	Save(ctx context.Context, sessionKey string, cart model.Cart) error
	Clear(ctx context.Context, sessionKey string) error
}

func encodeCart(cart model.Cart) ([]byte, error) {
	if cart == nil {
		cart = model.Cart{}
	}
	return json.Marshal(cart)
}

func decodeCart(sessionKey string, payload []byte) model.Cart {
	var cart model.Cart
	if err := json.Unmarshal(payload, &cart); err != nil {
		log.WithFields(log.Fields{
			"session": sessionKey,
			"err":     err,
		}).Warn("stored cart is not readable, starting with an empty cart")
		return model.Cart{}
	}
	if cart == nil {
		return model.Cart{}
	}
	return cart
}

// SessionCart binds a CartStore to one session so business code only sees load/save/clear.
type SessionCart struct {
	store CartStore
	key   string
}

func ForSession(store CartStore, sessionKey string) *SessionCart {
	return &SessionCart{
		store: store,
		key:   sessionKey,
	}
}

func (s *SessionCart) Key() string {
	return s.key
}

func (s *SessionCart) Load(ctx context.Context) model.Cart {
	return s.store.Load(ctx, s.key)
}

func (s *SessionCart) Save(ctx context.Context, cart model.Cart) error {
	return s.store.Save(ctx, s.key, cart)
}

func (s *SessionCart) Clear(ctx context.Context) error {
	return s.store.Clear(ctx, s.key)
}
