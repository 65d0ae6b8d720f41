package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dom/broadcast-overlay/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type stateRepository struct {
	db *gorm.DB
}

func NewStateRepository(db *gorm.DB) *stateRepository {
	return &stateRepository{db: db}
}

func (r *stateRepository) Load(ctx context.Context) (*domain.BroadcastState, error) {
	var record domain.StateRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", domain.StateRecordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Unknown fields in the stored document are ignored, missing ones are
	// filled from defaults, so documents written by older or newer builds
	// load cleanly.
	var state domain.BroadcastState
	if err := json.Unmarshal(record.Data, &state); err != nil {
		return nil, fmt.Errorf("decode state record: %w", err)
	}
	state.Normalize()

	return &state, nil
}

func (r *stateRepository) Save(ctx context.Context, state *domain.BroadcastState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state record: %w", err)
	}

	record := domain.StateRecord{
		ID:   domain.StateRecordID,
		Data: data,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&record).Error
}
