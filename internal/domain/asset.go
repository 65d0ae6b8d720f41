package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Asset is an uploaded binary (image or font) keyed by slot name. The
// metadata travels with the broadcast state; the payload is only fetched by
// the overlay through the asset content endpoint.
type Asset struct {
	Slot        string `json:"slot" gorm:"primaryKey"`
	FileName    string `json:"fileName" gorm:"not null"`
	ContentType string `json:"contentType" gorm:"not null"`
	SizeBytes   int64  `json:"sizeBytes" gorm:"not null"`
	UploadedAt  int64  `json:"uploadedAt" gorm:"not null"` // unix millis, cache-busting token
	Data        []byte `json:"-" gorm:"type:bytea"`
}

// Metadata strips the binary payload for listings and broadcasts.
func (a *Asset) Metadata() AssetMetadata {
	return AssetMetadata{
		Slot:        a.Slot,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		UploadedAt:  a.UploadedAt,
	}
}

type AssetMetadata struct {
	Slot        string `json:"slot"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	UploadedAt  int64  `json:"uploadedAt"`
}

// StateRecord is the single durable row holding the full BroadcastState as a
// JSON document. There is exactly one record per deployment.
type StateRecord struct {
	ID        int            `gorm:"primaryKey"`
	Data      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// StateRecordID is the fixed primary key of the singleton state row.
const StateRecordID = 1

// Preset is a named full-state snapshot an operator can save and re-apply.
type Preset struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string         `json:"name" gorm:"uniqueIndex;not null"`
	Data      datatypes.JSON `json:"data" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt"`
}
