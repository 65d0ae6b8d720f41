// Package reconciler implements the client side of the sync protocol: local
// edits apply immediately (optimistic UI), rapid edits to the same field
// group coalesce into one outbound call, and incoming broadcasts are merged
// against recent local edit timestamps so a client's in-flight edit is not
// clobbered by the server echoing someone else's update.
//
// The protocol is eventually consistent. There is no per-field ownership:
// two operators editing the same field group concurrently race, and the
// later replace wins.
package reconciler

import (
	"log"
	"sync"
	"time"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Group names one independently edited slice of the broadcast state.
type Group string

const (
	GroupPlayer1    Group = "player1"
	GroupPlayer2    Group = "player2"
	GroupMeta       Group = "meta"
	GroupColors     Group = "colors"
	GroupTextConfig Group = "textConfig"
	GroupLayout     Group = "layout"
)

// Sender pushes an outbound update to the server. A send failure keeps the
// local optimistic value; the next edit re-triggers a send.
type Sender interface {
	SendReplace(group Group, value interface{}) error
	SendGlobal(field string, value interface{}) error
}

type Config struct {
	// DebounceWindow is how long a burst of edits to one group is coalesced
	// before a single outbound call carrying the latest value fires.
	DebounceWindow time.Duration

	// SuppressionWindow is how long after a local edit an incoming broadcast
	// value for that group is dropped. Must exceed DebounceWindow so the
	// client's own edit can round-trip before being overwritten.
	SuppressionWindow time.Duration

	Clock clockwork.Clock
}

type Reconciler struct {
	sender      Sender
	clock       clockwork.Clock
	debounce    time.Duration
	suppression time.Duration

	mu            sync.Mutex
	state         *domain.BroadcastState
	lastLocalEdit map[Group]time.Time
	pending       map[Group]clockwork.Timer
}

func New(sender Sender, cfg Config) *Reconciler {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Reconciler{
		sender:        sender,
		clock:         clock,
		debounce:      cfg.DebounceWindow,
		suppression:   cfg.SuppressionWindow,
		state:         domain.DefaultState(),
		lastLocalEdit: make(map[Group]time.Time),
		pending:       make(map[Group]clockwork.Timer),
	}
}

// State returns a copy of the local optimistic state.
func (r *Reconciler) State() *domain.BroadcastState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

func (r *Reconciler) EditPlayer1(player domain.PlayerState) {
	r.mu.Lock()
	r.state.Player1 = player
	r.noteEditLocked(GroupPlayer1)
	r.mu.Unlock()
}

func (r *Reconciler) EditPlayer2(player domain.PlayerState) {
	r.mu.Lock()
	r.state.Player2 = player
	r.noteEditLocked(GroupPlayer2)
	r.mu.Unlock()
}

func (r *Reconciler) EditMeta(meta domain.Meta) {
	r.mu.Lock()
	r.state.Meta = meta
	r.noteEditLocked(GroupMeta)
	r.mu.Unlock()
}

func (r *Reconciler) EditColors(colors map[string]string) {
	r.mu.Lock()
	r.state.Colors = colors
	r.noteEditLocked(GroupColors)
	r.mu.Unlock()
}

func (r *Reconciler) EditTextConfig(textConfig map[string]string) {
	r.mu.Lock()
	r.state.TextConfig = textConfig
	r.noteEditLocked(GroupTextConfig)
	r.mu.Unlock()
}

func (r *Reconciler) EditLayout(layout map[domain.Slot]domain.SlotLayout) {
	r.mu.Lock()
	r.state.Layout = layout
	r.noteEditLocked(GroupLayout)
	r.mu.Unlock()
}

// Global fields carry no per-operator ownership: they are sent immediately
// and incoming broadcast values are always accepted.

func (r *Reconciler) SetVisibility(visible bool) {
	r.mu.Lock()
	r.state.IsVisible = visible
	r.mu.Unlock()

	if err := r.sender.SendGlobal("visibility", visible); err != nil {
		log.Printf("reconciler: failed to send visibility: %v", err)
	}
}

func (r *Reconciler) SetAnimationDuration(ms int) {
	ms = domain.ClampAnimationDuration(ms)

	r.mu.Lock()
	r.state.AnimationDurationMs = ms
	r.mu.Unlock()

	if err := r.sender.SendGlobal("animationDuration", ms); err != nil {
		log.Printf("reconciler: failed to send animation duration: %v", err)
	}
}

func (r *Reconciler) SetShowBorders(show bool) {
	r.mu.Lock()
	r.state.ShowBorders = show
	r.mu.Unlock()

	if err := r.sender.SendGlobal("showBorders", show); err != nil {
		log.Printf("reconciler: failed to send show borders: %v", err)
	}
}

// noteEditLocked stamps the group's local edit time and schedules (or
// extends) the debounced outbound send for it.
func (r *Reconciler) noteEditLocked(group Group) {
	r.lastLocalEdit[group] = r.clock.Now()

	if timer, ok := r.pending[group]; ok {
		timer.Reset(r.debounce)
		return
	}
	r.pending[group] = r.clock.AfterFunc(r.debounce, func() {
		r.flush(group)
	})
}

// flush fires after the debounce window with no further edits: it sends the
// latest value for the group. A failed send keeps the optimistic value and
// schedules no retry.
func (r *Reconciler) flush(group Group) {
	r.mu.Lock()
	delete(r.pending, group)
	value := r.groupValueLocked(group)
	r.mu.Unlock()

	if err := r.sender.SendReplace(group, value); err != nil {
		log.Printf("reconciler: failed to send %s update: %v", group, err)
	}
}

func (r *Reconciler) groupValueLocked(group Group) interface{} {
	switch group {
	case GroupPlayer1:
		return r.state.Player1
	case GroupPlayer2:
		return r.state.Player2
	case GroupMeta:
		return r.state.Meta
	case GroupColors:
		return r.state.Clone().Colors
	case GroupTextConfig:
		return r.state.Clone().TextConfig
	case GroupLayout:
		return r.state.Clone().Layout
	}
	return nil
}

// ApplyRemote merges a broadcast snapshot into the local state. Each field
// group takes the remote value unless it was locally edited within the
// suppression window; global fields always take the remote value.
func (r *Reconciler) ApplyRemote(remote *domain.BroadcastState) {
	incoming := remote.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()

	if r.acceptLocked(GroupPlayer1, now) {
		r.state.Player1 = incoming.Player1
	}
	if r.acceptLocked(GroupPlayer2, now) {
		r.state.Player2 = incoming.Player2
	}
	if r.acceptLocked(GroupMeta, now) {
		r.state.Meta = incoming.Meta
	}
	if r.acceptLocked(GroupColors, now) {
		r.state.Colors = incoming.Colors
	}
	if r.acceptLocked(GroupTextConfig, now) {
		r.state.TextConfig = incoming.TextConfig
	}
	if r.acceptLocked(GroupLayout, now) {
		r.state.Layout = incoming.Layout
	}

	r.state.IsVisible = incoming.IsVisible
	r.state.AnimationDurationMs = incoming.AnimationDurationMs
	r.state.ShowBorders = incoming.ShowBorders
}

func (r *Reconciler) acceptLocked(group Group, now time.Time) bool {
	editedAt, ok := r.lastLocalEdit[group]
	if !ok {
		return true
	}
	return now.Sub(editedAt) > r.suppression
}
