package repository

import (
	"context"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/google/uuid"
)

type StateRepository interface {
	// Load returns the persisted snapshot, or (nil, nil) when none has been
	// saved yet.
	Load(ctx context.Context) (*domain.BroadcastState, error)
	Save(ctx context.Context, state *domain.BroadcastState) error
}

type AssetRepository interface {
	GetAll(ctx context.Context) ([]*domain.Asset, error)
	Get(ctx context.Context, slot string) (*domain.Asset, error)
	Put(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, slot string) error
}

type PresetRepository interface {
	Create(ctx context.Context, preset *domain.Preset) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Preset, error)
	GetAll(ctx context.Context) ([]*domain.Preset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	State  StateRepository
	Asset  AssetRepository
	Preset PresetRepository
}
