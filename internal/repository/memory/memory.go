// Package memory provides in-memory implementations of the repository
// interfaces. They back the server's ephemeral mode (no DATABASE_URL) and
// keep the sync engine testable without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/repository"
	"github.com/google/uuid"
)

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		State:  NewStateRepository(),
		Asset:  NewAssetRepository(),
		Preset: NewPresetRepository(),
	}
}

type stateRepository struct {
	mu    sync.Mutex
	state *domain.BroadcastState
}

func NewStateRepository() *stateRepository {
	return &stateRepository{}
}

func (r *stateRepository) Load(ctx context.Context) (*domain.BroadcastState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		return nil, nil
	}
	return r.state.Clone(), nil
}

func (r *stateRepository) Save(ctx context.Context, state *domain.BroadcastState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = state.Clone()
	return nil
}

type assetRepository struct {
	mu     sync.Mutex
	assets map[string]*domain.Asset
}

func NewAssetRepository() *assetRepository {
	return &assetRepository{assets: make(map[string]*domain.Asset)}
}

func (r *assetRepository) GetAll(ctx context.Context) ([]*domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (r *assetRepository) Get(ctx context.Context, slot string) (*domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[slot]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *assetRepository) Put(ctx context.Context, asset *domain.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *asset
	r.assets[asset.Slot] = &copied
	return nil
}

func (r *assetRepository) Delete(ctx context.Context, slot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.assets, slot)
	return nil
}

type presetRepository struct {
	mu      sync.Mutex
	presets map[uuid.UUID]*domain.Preset
}

func NewPresetRepository() *presetRepository {
	return &presetRepository{presets: make(map[uuid.UUID]*domain.Preset)}
}

func (r *presetRepository) Create(ctx context.Context, preset *domain.Preset) error {
	if preset.Name == "" {
		return domain.ErrEmptyPresetName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.presets {
		if p.Name == preset.Name {
			return domain.ErrPresetNameTaken
		}
	}

	if preset.CreatedAt.IsZero() {
		preset.CreatedAt = time.Now()
	}
	copied := *preset
	r.presets[preset.ID] = &copied
	return nil
}

func (r *presetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Preset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.presets[id]
	if !ok {
		return nil, domain.ErrPresetNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *presetRepository) GetAll(ctx context.Context) ([]*domain.Preset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Preset, 0, len(r.presets))
	for _, p := range r.presets {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *presetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.presets, id)
	return nil
}
