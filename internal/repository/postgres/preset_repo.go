package postgres

import (
	"context"
	"errors"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type presetRepository struct {
	db *gorm.DB
}

func NewPresetRepository(db *gorm.DB) *presetRepository {
	return &presetRepository{db: db}
}

func (r *presetRepository) Create(ctx context.Context, preset *domain.Preset) error {
	if preset.Name == "" {
		return domain.ErrEmptyPresetName
	}

	err := r.db.WithContext(ctx).Create(preset).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrPresetNameTaken
	}
	return err
}

func (r *presetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Preset, error) {
	var preset domain.Preset
	err := r.db.WithContext(ctx).First(&preset, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPresetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

func (r *presetRepository) GetAll(ctx context.Context) ([]*domain.Preset, error) {
	var presets []*domain.Preset
	err := r.db.WithContext(ctx).Order("name ASC").Find(&presets).Error
	if err != nil {
		return nil, err
	}
	return presets, nil
}

func (r *presetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Preset{}, "id = ?", id).Error
}
