package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Entity is anything the store can persist and identify afterwards.
type Entity interface {
	TableName() string
	EntityID() uint
}

// EntityStore persists entities. Each Create is independently atomic.
type EntityStore interface {
	Create(ctx context.Context, entity Entity) (uint, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, entity Entity) (uint, error) {
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return 0, fmt.Errorf("%w: create %s: %v", ErrPersistence, entity.TableName(), err)
	}
	return entity.EntityID(), nil
}
