// Package store owns the single authoritative copy of the broadcast state.
// Every mutation replaces a whole named sub-object, persists the full
// aggregate, and notifies the broadcast listener with the committed snapshot.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/repository"
)

// Listener receives the committed snapshot after every successful mutation.
// The websocket hub implements this to fan the state out to all clients.
type Listener interface {
	OnStateChanged(state *domain.BroadcastState)
}

type Store struct {
	repo     repository.StateRepository
	mu       sync.Mutex
	state    *domain.BroadcastState
	listener Listener
}

func New(repo repository.StateRepository) *Store {
	return &Store{
		repo:  repo,
		state: domain.DefaultState(),
	}
}

// SetListener registers the broadcast listener. Must be called before the
// store is shared with connection handlers.
func (s *Store) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// LoadOrInit hydrates the store from the persisted snapshot. Any read or
// parse failure falls back to defaults; startup never fails because of a
// missing or corrupt state record.
func (s *Store) LoadOrInit(ctx context.Context) {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		log.Printf("store: failed to load persisted state, using defaults: %v", err)
		return
	}
	if loaded == nil {
		log.Printf("store: no persisted state found, using defaults")
		return
	}

	s.mu.Lock()
	s.state = loaded
	s.mu.Unlock()
}

// State returns a deep copy of the current snapshot. Callers can never
// mutate the committed state through it.
func (s *Store) State() *domain.BroadcastState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// mutate runs fn on the live state under the mutation lock, persists the
// full aggregate, and notifies the listener outside the lock. A persistence
// failure is logged but never rolls back the in-memory mutation; the next
// successful save catches up.
func (s *Store) mutate(ctx context.Context, fn func(*domain.BroadcastState)) *domain.BroadcastState {
	s.mu.Lock()
	fn(s.state)
	snapshot := s.state.Clone()
	if err := s.repo.Save(ctx, s.state); err != nil {
		log.Printf("store: failed to persist state: %v", err)
	}
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener.OnStateChanged(snapshot)
	}
	return snapshot
}

func (s *Store) ReplacePlayer1(ctx context.Context, player domain.PlayerState) *domain.BroadcastState {
	return s.mutate(ctx, func(state *domain.BroadcastState) {
		state.Player1 = player
		state.Normalize()
	})
}

func (s *Store) ReplacePlayer2(ctx context.Context, player domain.PlayerState) *domain.BroadcastState {
	return s.mutate(ctx, func(state *domain.BroadcastState) {
		state.Player2 = player
		state.Normalize()
	})
}

func (s *Store) ReplaceMeta(ctx context.Context, meta domain.Meta) *domain.BroadcastState {
	return s.mutate(ctx, func(state *domain.BroadcastState) {
		state.Meta = meta
	})
}

func (s *Store) ReplaceColors(ctx context.Context, colors map[string]string) *domain.BroadcastState {
	return s.mutate(ctx, func(state *domain.BroadcastState) {
		state.Colors = colors
		state.Normalize()
	})
}

func (s *Store) ReplaceTextConfig(ctx context.Context, textConfig map[string]string) *domain.BroadcastState {
	return s.mutate(ctx, func(state *domain.BroadcastState) {
		state.TextConfig = textConfig
		state.Normalize()
	})
}

func (s *Store) ReplaceLayout(ctx context.Context, layout map[domain.Slot]domain.SlotLayout) *domain.BroadcastState {
	return s.mutate(ctx, func(state *domain.BroadcastState) {
		state.Layout = layout
		state.Normalize()
	})
}

func (s *Store) SetVisibility(ctx context.Context, visible bool) *domain.BroadcastState {
	return s.mutate(ctx, func(state *domain.BroadcastState) {
		state.IsVisible = visible
	})
}

func (s *Store) SetAnimationDuration(ctx context.Context, ms int) *domain.BroadcastState {
	return s.mutate(ctx, func(state *domain.BroadcastState) {
		state.AnimationDurationMs = domain.ClampAnimationDuration(ms)
	})
}

func (s *Store) SetShowBorders(ctx context.Context, show bool) *domain.BroadcastState {
	return s.mutate(ctx, func(state *domain.BroadcastState) {
		state.ShowBorders = show
	})
}

// SetState bulk-replaces the entire aggregate from a raw JSON document, used
// by the preset-apply and initial-hydrate flows. A document that does not
// parse is rejected and the prior state is kept; unknown fields are ignored
// and missing ones fall back to defaults.
func (s *Store) SetState(ctx context.Context, raw []byte) (*domain.BroadcastState, error) {
	var incoming domain.BroadcastState
	if err := json.Unmarshal(raw, &incoming); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedState, err)
	}
	incoming.Normalize()

	return s.mutate(ctx, func(state *domain.BroadcastState) {
		*state = incoming
	}), nil
}

// Reset restores every field to the compiled-in defaults.
func (s *Store) Reset(ctx context.Context) *domain.BroadcastState {
	return s.mutate(ctx, func(state *domain.BroadcastState) {
		*state = *domain.DefaultState()
	})
}
