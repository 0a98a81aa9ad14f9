package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-web/internal/model"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartStore {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) Load(ctx context.Context, sessionKey string) model.Cart {
	cart, err := r.LoadForUpdate(ctx, sessionKey)
	if err != nil {
		log.WithError(err).WithField("session", sessionKey).Warn("load cart document")
		return model.Cart{}
	}
	return cart
}

func (r *cartRepoImpl) LoadForUpdate(ctx context.Context, sessionKey string) (model.Cart, error) {
	var doc model.CartDocument
	err := r.db.WithContext(ctx).
		Where("session_key = ?", sessionKey).
		First(&doc).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart document: %w", err)
	}

	return decodeCart(sessionKey, []byte(doc.Payload)), nil
}

func (r *cartRepoImpl) Save(ctx context.Context, sessionKey string, cart model.Cart) error {
	payload, err := encodeCart(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	doc := &model.CartDocument{
		SessionKey: sessionKey,
		Payload:    string(payload),
		UpdatedAt:  time.Now(),
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(doc).Error
	if err != nil {
		return fmt.Errorf("save cart document: %w", err)
	}

	return nil
}

func (r *cartRepoImpl) Clear(ctx context.Context, sessionKey string) error {
	err := r.db.WithContext(ctx).
		Where("session_key = ?", sessionKey).
		Delete(&model.CartDocument{}).Error
	if err != nil {
		return fmt.Errorf("delete cart document: %w", err)
	}

	return nil
}
