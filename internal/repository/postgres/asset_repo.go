package postgres

import (
	"context"
	"errors"

	"github.com/dom/broadcast-overlay/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type assetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *assetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) GetAll(ctx context.Context) ([]*domain.Asset, error) {
	var assets []*domain.Asset
	err := r.db.WithContext(ctx).Order("slot ASC").Find(&assets).Error
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) Get(ctx context.Context, slot string) (*domain.Asset, error) {
	var asset domain.Asset
	err := r.db.WithContext(ctx).First(&asset, "slot = ?", slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) Put(ctx context.Context, asset *domain.Asset) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slot"}},
			DoUpdates: clause.AssignmentColumns([]string{"file_name", "content_type", "size_bytes", "uploaded_at", "data"}),
		}).
		Create(asset).Error
}

func (r *assetRepository) Delete(ctx context.Context, slot string) error {
	return r.db.WithContext(ctx).Delete(&domain.Asset{}, "slot = ?", slot).Error
}
