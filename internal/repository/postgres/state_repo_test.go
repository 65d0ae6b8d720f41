package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/dom/broadcast-overlay/internal/repository/postgres"
	"github.com/dom/broadcast-overlay/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRepository_LoadEmpty(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewStateRepository(testDB.DB)
	ctx := context.Background()

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestStateRepository_SaveAndLoad(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewStateRepository(testDB.DB)
	ctx := context.Background()

	state := domain.DefaultState()
	state.Player1 = domain.PlayerState{
		Name:        "Daigo",
		Sponsor:     "Red Bull",
		Score:       3,
		Tag:         "The Beast",
		FlagCode:    "jp",
		FinalResult: domain.FinalResultWinner,
	}
	state.Meta = domain.Meta{Title: "EVO Finals", FightRule: "Best of 5"}
	state.Layout[domain.SlotCenter] = domain.SlotLayout{X: 1, Y: 2, Width: 3, Height: 4}

	require.NoError(t, repo.Save(ctx, state))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestStateRepository_SaveOverwritesSingletonRow(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewStateRepository(testDB.DB)
	ctx := context.Background()

	first := domain.DefaultState()
	first.Player1.Score = 1
	require.NoError(t, repo.Save(ctx, first))

	second := domain.DefaultState()
	second.Player1.Score = 2
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Player1.Score)

	var count int64
	testDB.DB.Model(&domain.StateRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStateRepository_LoadToleratesUnknownFields(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewStateRepository(testDB.DB)
	ctx := context.Background()

	record := domain.StateRecord{
		ID:   domain.StateRecordID,
		Data: []byte(`{"player1": {"name": "Old"}, "droppedLegacyField": {"x": 1}}`),
	}
	require.NoError(t, testDB.DB.Create(&record).Error)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Old", got.Player1.Name)
	// Missing sections are defaulted on load
	assert.NotNil(t, got.Colors)
	assert.Equal(t, domain.FinalResultNone, got.Player1.FinalResult)
}
