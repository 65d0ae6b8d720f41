package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FillsMissingFields(t *testing.T) {
	// Simulates a document written by an older build
	var state domain.BroadcastState
	require.NoError(t, json.Unmarshal([]byte(`{"player1": {"name": "A"}}`), &state))

	state.Normalize()

	assert.NotNil(t, state.Colors)
	assert.NotNil(t, state.TextConfig)
	assert.NotNil(t, state.Layout)
	assert.Equal(t, domain.FinalResultNone, state.Player1.FinalResult)
	assert.Equal(t, domain.DefaultState().AnimationDurationMs, state.AnimationDurationMs)
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	state := domain.DefaultState()
	state.Colors[domain.ColorRoleAccent] = "#ff0000"
	state.Colors["customRole"] = "#00ff00"
	state.AnimationDurationMs = 2000

	state.Normalize()

	assert.Equal(t, "#ff0000", state.Colors[domain.ColorRoleAccent])
	assert.Equal(t, "#00ff00", state.Colors["customRole"])
	assert.Equal(t, 2000, state.AnimationDurationMs)
}

func TestClampAnimationDuration(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"below minimum", 50, domain.MinAnimationDurationMs},
		{"above maximum", 50000, domain.MaxAnimationDurationMs},
		{"in range", 1500, 1500},
		{"absent field", 0, domain.DefaultState().AnimationDurationMs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ClampAnimationDuration(tt.in))
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	original := domain.DefaultState()
	original.Layout[domain.SlotCenter] = domain.SlotLayout{
		X: 10, Y: 20, Width: 100, Height: 50,
		Asset: &domain.AssetRef{Slot: domain.SlotCenter, UploadedAt: 123},
	}

	clone := original.Clone()
	clone.Colors[domain.ColorRoleText] = "mutated"
	clone.Layout[domain.SlotCenter].Asset.UploadedAt = 999

	assert.NotEqual(t, "mutated", original.Colors[domain.ColorRoleText])
	assert.Equal(t, int64(123), original.Layout[domain.SlotCenter].Asset.UploadedAt)
}
