package domain

// FinalResult marks a player as the winner or loser once a match is decided.
type FinalResult string

const (
	FinalResultNone   FinalResult = "none"
	FinalResultWinner FinalResult = "winner"
	FinalResultLoser  FinalResult = "loser"
)

// Slot names a position on the overlay that can hold layout and an asset.
type Slot string

const (
	SlotCenter       Slot = "center"
	SlotLeft         Slot = "left"
	SlotRight        Slot = "right"
	SlotFightMode    Slot = "fight_mode"
	SlotCommentator1 Slot = "commentator_1"
	SlotCommentator2 Slot = "commentator_2"
)

const (
	MinAnimationDurationMs = 100
	MaxAnimationDurationMs = 10000
)

// PlayerState describes one side of the overlay scoreboard.
type PlayerState struct {
	Name        string      `json:"name"`
	Sponsor     string      `json:"sponsor"`
	Score       int         `json:"score"`
	Tag         string      `json:"tag"`
	FlagCode    string      `json:"flagCode"`
	FinalResult FinalResult `json:"finalResult"`
}

// Meta holds tournament-level text shown on the overlay.
type Meta struct {
	Title     string `json:"title"`
	FightRule string `json:"fightRule"`
}

// AssetRef points at an uploaded asset. UploadedAt doubles as a cache-busting
// token so a re-uploaded asset is never served from a stale browser cache.
type AssetRef struct {
	Slot       Slot  `json:"slot"`
	UploadedAt int64 `json:"uploadedAt"`
}

// SlotLayout is the position and size of one overlay slot, plus the asset
// displayed in it. A slot absent from the layout map is not displayed.
type SlotLayout struct {
	X      int       `json:"x"`
	Y      int       `json:"y"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Asset  *AssetRef `json:"asset,omitempty"`
}

// BroadcastState is the single shared aggregate describing everything the
// overlay displays. Mutations always replace a whole named sub-object, never
// a partial field patch, so the persisted document is always a complete
// snapshot.
type BroadcastState struct {
	Player1             PlayerState           `json:"player1"`
	Player2             PlayerState           `json:"player2"`
	Meta                Meta                  `json:"meta"`
	Colors              map[string]string     `json:"colors"`
	TextConfig          map[string]string     `json:"textConfig"`
	Layout              map[Slot]SlotLayout   `json:"layout"`
	IsVisible           bool                  `json:"isVisible"`
	AnimationDurationMs int                   `json:"animationDuration"`
	ShowBorders         bool                  `json:"isShowBorders"`
}

// Color roles with compiled-in fallbacks. Unknown roles pass through as-is.
const (
	ColorRoleBackground = "background"
	ColorRoleText       = "text"
	ColorRoleAccent     = "accent"
	ColorRoleScore      = "score"
	ColorRoleBorder     = "border"
)

func defaultColors() map[string]string {
	return map[string]string{
		ColorRoleBackground: "rgba(0, 0, 0, 0.85)",
		ColorRoleText:       "#ffffff",
		ColorRoleAccent:     "#e8b710",
		ColorRoleScore:      "#ffffff",
		ColorRoleBorder:     "rgba(255, 255, 255, 0.25)",
	}
}

// DefaultState returns the compiled-in broadcast state used at first start
// and after an operator reset.
func DefaultState() *BroadcastState {
	return &BroadcastState{
		Player1: PlayerState{
			Name:        "Player 1",
			FinalResult: FinalResultNone,
		},
		Player2: PlayerState{
			Name:        "Player 2",
			FinalResult: FinalResultNone,
		},
		Meta: Meta{
			Title:     "Tournament",
			FightRule: "Best of 3",
		},
		Colors:              defaultColors(),
		TextConfig:          map[string]string{},
		Layout:              map[Slot]SlotLayout{},
		IsVisible:           true,
		AnimationDurationMs: 500,
		ShowBorders:         false,
	}
}

// Clone returns a deep copy so callers can never mutate a committed snapshot
// in place.
func (s *BroadcastState) Clone() *BroadcastState {
	out := *s

	out.Colors = make(map[string]string, len(s.Colors))
	for k, v := range s.Colors {
		out.Colors[k] = v
	}

	out.TextConfig = make(map[string]string, len(s.TextConfig))
	for k, v := range s.TextConfig {
		out.TextConfig[k] = v
	}

	out.Layout = make(map[Slot]SlotLayout, len(s.Layout))
	for k, v := range s.Layout {
		if v.Asset != nil {
			ref := *v.Asset
			v.Asset = &ref
		}
		out.Layout[k] = v
	}

	return &out
}

// Normalize fills in anything a partially populated snapshot is missing so
// the aggregate stays complete: nil maps become empty, unset color roles get
// their defaults, player result tags and the animation duration get legal
// values. Applied after every load and bulk replace, so older or newer
// documents never leave holes in the state.
func (s *BroadcastState) Normalize() {
	if s.Colors == nil {
		s.Colors = map[string]string{}
	}
	for role, value := range defaultColors() {
		if _, ok := s.Colors[role]; !ok {
			s.Colors[role] = value
		}
	}

	if s.TextConfig == nil {
		s.TextConfig = map[string]string{}
	}
	if s.Layout == nil {
		s.Layout = map[Slot]SlotLayout{}
	}

	s.Player1.FinalResult = normalizeResult(s.Player1.FinalResult)
	s.Player2.FinalResult = normalizeResult(s.Player2.FinalResult)

	s.AnimationDurationMs = ClampAnimationDuration(s.AnimationDurationMs)
}

func normalizeResult(r FinalResult) FinalResult {
	switch r {
	case FinalResultWinner, FinalResultLoser:
		return r
	default:
		return FinalResultNone
	}
}

// ClampAnimationDuration bounds the animation duration to the supported
// range. Zero (an absent field on an old document) falls back to the default.
func ClampAnimationDuration(ms int) int {
	if ms == 0 {
		return DefaultState().AnimationDurationMs
	}
	if ms < MinAnimationDurationMs {
		return MinAnimationDurationMs
	}
	if ms > MaxAnimationDurationMs {
		return MaxAnimationDurationMs
	}
	return ms
}
