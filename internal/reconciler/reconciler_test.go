package reconciler_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/reconciler"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentUpdate struct {
	group reconciler.Group
	value interface{}
}

// fakeSender records outbound calls on a channel so tests can wait for the
// debounce timer goroutine deterministically.
type fakeSender struct {
	calls   chan sentUpdate
	globals chan sentUpdate
	err     error
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		calls:   make(chan sentUpdate, 16),
		globals: make(chan sentUpdate, 16),
	}
}

func (s *fakeSender) SendReplace(group reconciler.Group, value interface{}) error {
	s.calls <- sentUpdate{group: group, value: value}
	return s.err
}

func (s *fakeSender) SendGlobal(field string, value interface{}) error {
	s.globals <- sentUpdate{group: reconciler.Group(field), value: value}
	return s.err
}

func (s *fakeSender) expectCall(t *testing.T) sentUpdate {
	t.Helper()
	select {
	case call := <-s.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound call")
		return sentUpdate{}
	}
}

func (s *fakeSender) expectNoCall(t *testing.T) {
	t.Helper()
	select {
	case call := <-s.calls:
		t.Fatalf("unexpected outbound call for %s", call.group)
	case <-time.After(50 * time.Millisecond):
	}
}

const (
	debounce    = 300 * time.Millisecond
	suppression = 500 * time.Millisecond
)

func newReconciler(sender reconciler.Sender, clock clockwork.Clock) *reconciler.Reconciler {
	return reconciler.New(sender, reconciler.Config{
		DebounceWindow:    debounce,
		SuppressionWindow: suppression,
		Clock:             clock,
	})
}

func TestReconciler_OptimisticLocalEdit(t *testing.T) {
	sender := newFakeSender()
	rec := newReconciler(sender, clockwork.NewFakeClock())

	rec.EditPlayer1(domain.PlayerState{Name: "Daigo", Score: 1})

	// Applied locally before any network round-trip
	assert.Equal(t, "Daigo", rec.State().Player1.Name)
	sender.expectNoCall(t)
}

func TestReconciler_DebounceCoalescing(t *testing.T) {
	sender := newFakeSender()
	clock := clockwork.NewFakeClock()
	rec := newReconciler(sender, clock)

	// Three rapid edits to the same group within the debounce window
	rec.EditPlayer1(domain.PlayerState{Score: 1})
	clock.Advance(100 * time.Millisecond)
	rec.EditPlayer1(domain.PlayerState{Score: 2})
	clock.Advance(100 * time.Millisecond)
	rec.EditPlayer1(domain.PlayerState{Score: 3})

	sender.expectNoCall(t)

	clock.Advance(debounce)

	call := sender.expectCall(t)
	assert.Equal(t, reconciler.GroupPlayer1, call.group)
	require.IsType(t, domain.PlayerState{}, call.value)
	assert.Equal(t, 3, call.value.(domain.PlayerState).Score)

	// Exactly one call for the whole burst
	clock.Advance(time.Second)
	sender.expectNoCall(t)
}

func TestReconciler_IndependentGroupsDebounceSeparately(t *testing.T) {
	sender := newFakeSender()
	clock := clockwork.NewFakeClock()
	rec := newReconciler(sender, clock)

	rec.EditPlayer1(domain.PlayerState{Score: 1})
	rec.EditMeta(domain.Meta{Title: "Finals"})

	clock.Advance(debounce)

	groups := map[reconciler.Group]bool{}
	groups[sender.expectCall(t).group] = true
	groups[sender.expectCall(t).group] = true

	assert.True(t, groups[reconciler.GroupPlayer1])
	assert.True(t, groups[reconciler.GroupMeta])
}

func TestReconciler_EchoSuppression(t *testing.T) {
	sender := newFakeSender()
	clock := clockwork.NewFakeClock()
	rec := newReconciler(sender, clock)

	rec.EditPlayer1(domain.PlayerState{Name: "Local", Score: 5})

	remote := domain.DefaultState()
	remote.Player1 = domain.PlayerState{Name: "Remote", Score: 0}
	remote.Meta = domain.Meta{Title: "Remote Title"}

	// Broadcast arrives 100ms after the local edit: inside the suppression
	// window, so player1 keeps the optimistic value while meta (never
	// locally edited) takes the remote value.
	clock.Advance(100 * time.Millisecond)
	rec.ApplyRemote(remote)

	state := rec.State()
	assert.Equal(t, "Local", state.Player1.Name)
	assert.Equal(t, 5, state.Player1.Score)
	assert.Equal(t, "Remote Title", state.Meta.Title)

	// A broadcast after the window is accepted.
	clock.Advance(suppression)
	rec.ApplyRemote(remote)

	assert.Equal(t, "Remote", rec.State().Player1.Name)
}

func TestReconciler_GlobalFieldsSkipSuppression(t *testing.T) {
	sender := newFakeSender()
	clock := clockwork.NewFakeClock()
	rec := newReconciler(sender, clock)

	rec.SetVisibility(false)
	<-sender.globals

	remote := domain.DefaultState()
	remote.IsVisible = true
	remote.AnimationDurationMs = 900
	remote.ShowBorders = true

	// Immediately after the local toggle the broadcast still wins: global
	// fields are shared control, not per-operator editing.
	rec.ApplyRemote(remote)

	state := rec.State()
	assert.True(t, state.IsVisible)
	assert.Equal(t, 900, state.AnimationDurationMs)
	assert.True(t, state.ShowBorders)
}

func TestReconciler_GlobalFieldsSendImmediately(t *testing.T) {
	sender := newFakeSender()
	rec := newReconciler(sender, clockwork.NewFakeClock())

	rec.SetVisibility(false)
	rec.SetAnimationDuration(20000)
	rec.SetShowBorders(true)

	assert.Equal(t, sentUpdate{group: "visibility", value: false}, <-sender.globals)
	// Clamped client-side before sending
	assert.Equal(t, sentUpdate{group: "animationDuration", value: domain.MaxAnimationDurationMs}, <-sender.globals)
	assert.Equal(t, sentUpdate{group: "showBorders", value: true}, <-sender.globals)
}

func TestReconciler_FailedSendKeepsOptimisticValueWithoutRetry(t *testing.T) {
	sender := newFakeSender()
	sender.err = errors.New("connection not established")
	clock := clockwork.NewFakeClock()
	rec := newReconciler(sender, clock)

	rec.EditPlayer2(domain.PlayerState{Name: "Knee"})
	clock.Advance(debounce)
	sender.expectCall(t)

	// The optimistic value survives the failure
	assert.Equal(t, "Knee", rec.State().Player2.Name)

	// No retry is scheduled; the next edit re-triggers a send
	clock.Advance(5 * time.Second)
	sender.expectNoCall(t)

	sender.err = nil
	rec.EditPlayer2(domain.PlayerState{Name: "Knee2"})
	clock.Advance(debounce)
	assert.Equal(t, "Knee2", sender.expectCall(t).value.(domain.PlayerState).Name)
}

func TestReconciler_RemoteSnapshotNotAliased(t *testing.T) {
	sender := newFakeSender()
	rec := newReconciler(sender, clockwork.NewFakeClock())

	remote := domain.DefaultState()
	rec.ApplyRemote(remote)

	remote.Colors["background"] = "mutated"

	assert.NotEqual(t, "mutated", rec.State().Colors["background"])
}
