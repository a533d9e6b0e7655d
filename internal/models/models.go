package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Enums

type SceneType string

const (
	SceneTypeHook           SceneType = "hook"
	SceneTypeBuildup        SceneType = "buildup"
	SceneTypeText           SceneType = "text"
	SceneTypePeak           SceneType = "peak"
	SceneTypeTransition     SceneType = "transition"
	SceneTypeCTA            SceneType = "cta"
	SceneTypeSpeaker        SceneType = "speaker"
	SceneTypeFinalStatement SceneType = "final_statement"
)

// IsTextual reports whether the scene renders text content instead of media.
func (t SceneType) IsTextual() bool {
	return t == SceneTypeText || t == SceneTypeCTA
}

type SceneStatus string

const (
	SceneStatusPending SceneStatus = "pending"
	SceneStatusDone    SceneStatus = "done"
	SceneStatusError   SceneStatus = "error"
)

// VisualEffect is the per-scene motion effect applied during preview and export.
type VisualEffect string

const (
	EffectZoomIn   VisualEffect = "zoom_in"
	EffectZoomOut  VisualEffect = "zoom_out"
	EffectPanLeft  VisualEffect = "pan_left"
	EffectPanRight VisualEffect = "pan_right"
	EffectPanUp    VisualEffect = "pan_up"
	EffectPanDown  VisualEffect = "pan_down"
	EffectFade     VisualEffect = "fade"
	EffectStatic   VisualEffect = "static"
	EffectShake    VisualEffect = "shake"
)

// allEffects is the set of effect identifiers the renderer understands.
var allEffects = map[VisualEffect]bool{
	EffectZoomIn:   true,
	EffectZoomOut:  true,
	EffectPanLeft:  true,
	EffectPanRight: true,
	EffectPanUp:    true,
	EffectPanDown:  true,
	EffectFade:     true,
	EffectStatic:   true,
	EffectShake:    true,
}

// Valid reports whether the effect is one of the allowed identifiers.
func (e VisualEffect) Valid() bool {
	return allEffects[e]
}

type TextColor string

const (
	TextColorWhite TextColor = "white"
	TextColorBlack TextColor = "black"
)

type FontStyle string

const (
	FontStyleBold       FontStyle = "bold"
	FontStyleNormal     FontStyle = "normal"
	FontStyleLight      FontStyle = "light"
	FontStyleItalic     FontStyle = "italic"
	FontStyleBoldItalic FontStyle = "bold-italic"
)

type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

type VerticalAlign string

const (
	VAlignTop    VerticalAlign = "top"
	VAlignCenter VerticalAlign = "center"
	VAlignBottom VerticalAlign = "bottom"
)

type SyncStatus string

const (
	SyncStatusSynced SyncStatus = "synced"
	SyncStatusDirty  SyncStatus = "dirty"
	SyncStatusSaving SyncStatus = "saving"
	SyncStatusError  SyncStatus = "error"
)

// Models

// Scene is one timed segment of the timeline. IDs are dense and sequential
// starting at 1; Timestamp is display-only, always recomputed from the
// cumulative durations of preceding scenes and never authoritative.
type Scene struct {
	ID          int          `json:"id"`
	Type        SceneType    `json:"type"`
	Duration    float64      `json:"duration"` // seconds, > 0
	Timestamp   string       `json:"timestamp,omitempty"`
	Description string       `json:"description,omitempty"`
	Prompt      string       `json:"prompt,omitempty"`
	VisualFX    VisualEffect `json:"visual_fx,omitempty"`
	Style       string       `json:"style,omitempty"`
	Status      SceneStatus  `json:"status,omitempty"`

	// Media reference. ImageURL is the canonical field; MediaURL survives
	// from older records and wins when both are set.
	ImageURL string `json:"image_url,omitempty"`
	MediaURL string `json:"media_url,omitempty"`

	// Text scene fields
	TextContent   string        `json:"text_content,omitempty"`
	TextBG        string        `json:"text_bg,omitempty"`
	TextColor     TextColor     `json:"text_color,omitempty"`
	TextSize      int           `json:"text_size,omitempty"` // pixels
	FontFamily    string        `json:"font_family,omitempty"`
	FontStyle     FontStyle     `json:"font_style,omitempty"`
	TextAlign     TextAlign     `json:"text_align,omitempty"`
	VerticalAlign VerticalAlign `json:"vertical_align,omitempty"`

	// Optional custom drag position, percentage of canvas (5–95).
	// Overrides alignment when set.
	TextX *float64 `json:"text_x,omitempty"`
	TextY *float64 `json:"text_y,omitempty"`
}

// MediaRef returns the effective media location for the scene.
func (s *Scene) MediaRef() string {
	if s.MediaURL != "" {
		return s.MediaURL
	}
	return s.ImageURL
}

// Clone returns a deep copy of the scene.
func (s Scene) Clone() Scene {
	c := s
	if s.TextX != nil {
		x := *s.TextX
		c.TextX = &x
	}
	if s.TextY != nil {
		y := *s.TextY
		c.TextY = &y
	}
	return c
}

// CloneScenes deep-copies a scene sequence.
func CloneScenes(scenes []Scene) []Scene {
	if scenes == nil {
		return nil
	}
	out := make([]Scene, len(scenes))
	for i, s := range scenes {
		out[i] = s.Clone()
	}
	return out
}

// Project is the aggregate container owning one ordered scene sequence.
// TargetDuration is supplied externally and only used for a soft-match
// validation warning.
type Project struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	TargetDuration float64   `json:"target_duration,omitempty"` // seconds
	SceneCount     int       `json:"scene_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AudioRef is an optional external audio asset. During playback it acts as
// an alternative master clock; its effective duration is a lower bound on
// the total timeline duration.
type AudioRef struct {
	Path            string  `json:"path"`
	Duration        float64 `json:"duration"`                   // natural length, seconds
	TrimmedDuration float64 `json:"trimmed_duration,omitempty"` // 0 = untrimmed
	Volume          float64 `json:"volume"`
	Muted           bool    `json:"muted"`
}

// SetTrimmedDuration clamps d to [1s, natural duration] and snaps it to the
// nearest half second.
func (a *AudioRef) SetTrimmedDuration(d float64) {
	d = math.Round(d*2) / 2
	if d < 1 {
		d = 1
	}
	if a.Duration > 0 && d > a.Duration {
		d = a.Duration
	}
	a.TrimmedDuration = d
}

// EffectiveDuration returns the trimmed duration when set, the natural
// duration otherwise.
func (a *AudioRef) EffectiveDuration() float64 {
	if a == nil {
		return 0
	}
	if a.TrimmedDuration > 0 {
		return a.TrimmedDuration
	}
	return a.Duration
}

// Severity of a validation diagnostic. Errors block export, warnings never do.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a transient validation finding, recomputed from scene state
// on every change and never persisted. SceneID is nil for project-level
// findings.
type Diagnostic struct {
	Severity   Severity `json:"severity"`
	SceneID    *int     `json:"scene_id,omitempty"`
	Field      string   `json:"field"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Fixable    bool     `json:"fixable"`
}
