package domain

import "errors"

// State errors
var (
	ErrMalformedState = errors.New("malformed state document")
)

// Asset errors
var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrAssetTooLarge = errors.New("asset exceeds maximum size")
	ErrEmptySlot     = errors.New("asset slot must not be empty")
)

// Preset errors
var (
	ErrPresetNotFound   = errors.New("preset not found")
	ErrPresetNameTaken  = errors.New("preset name is already taken")
	ErrEmptyPresetName  = errors.New("preset name must not be empty")
)
