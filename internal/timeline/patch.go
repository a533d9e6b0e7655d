package timeline

import "github.com/bobarin/reelcut/internal/models"

// ScenePatch is a partial scene update. Only non-nil fields are applied.
// Patches are merged into the store's own copy of the scene; callers never
// share references with the store.
type ScenePatch struct {
	Type          *models.SceneType
	Duration      *float64
	Description   *string
	Prompt        *string
	VisualFX      *models.VisualEffect
	Style         *string
	Status        *models.SceneStatus
	ImageURL      *string
	MediaURL      *string
	TextContent   *string
	TextBG        *string
	TextColor     *models.TextColor
	TextSize      *int
	FontFamily    *string
	FontStyle     *models.FontStyle
	TextAlign     *models.TextAlign
	VerticalAlign *models.VerticalAlign
	TextX         *float64
	TextY         *float64

	// ClearTextPos drops a custom drag position so alignment applies again.
	ClearTextPos bool
}

// apply merges the patch into target and reports the diff of the first
// changed field for the history label. Multi-field patches are labeled
// "multiple".
func (p ScenePatch) apply(target *models.Scene) (field string, oldVal, newVal any) {
	changed := 0
	record := func(name string, o, n any) {
		changed++
		if changed == 1 {
			field, oldVal, newVal = name, o, n
		} else {
			field, oldVal, newVal = "multiple", nil, nil
		}
	}

	if p.Type != nil && *p.Type != target.Type {
		record("type", target.Type, *p.Type)
		target.Type = *p.Type
	}
	if p.Duration != nil && *p.Duration != target.Duration {
		record("duration", target.Duration, *p.Duration)
		target.Duration = *p.Duration
	}
	if p.Description != nil && *p.Description != target.Description {
		record("description", target.Description, *p.Description)
		target.Description = *p.Description
	}
	if p.Prompt != nil && *p.Prompt != target.Prompt {
		record("prompt", target.Prompt, *p.Prompt)
		target.Prompt = *p.Prompt
	}
	if p.VisualFX != nil && *p.VisualFX != target.VisualFX {
		record("visual_fx", target.VisualFX, *p.VisualFX)
		target.VisualFX = *p.VisualFX
	}
	if p.Style != nil && *p.Style != target.Style {
		record("style", target.Style, *p.Style)
		target.Style = *p.Style
	}
	if p.Status != nil && *p.Status != target.Status {
		record("status", target.Status, *p.Status)
		target.Status = *p.Status
	}
	if p.ImageURL != nil && *p.ImageURL != target.ImageURL {
		record("image_url", target.ImageURL, *p.ImageURL)
		target.ImageURL = *p.ImageURL
	}
	if p.MediaURL != nil && *p.MediaURL != target.MediaURL {
		record("media_url", target.MediaURL, *p.MediaURL)
		target.MediaURL = *p.MediaURL
	}
	if p.TextContent != nil && *p.TextContent != target.TextContent {
		record("text_content", target.TextContent, *p.TextContent)
		target.TextContent = *p.TextContent
	}
	if p.TextBG != nil && *p.TextBG != target.TextBG {
		record("text_bg", target.TextBG, *p.TextBG)
		target.TextBG = *p.TextBG
	}
	if p.TextColor != nil && *p.TextColor != target.TextColor {
		record("text_color", target.TextColor, *p.TextColor)
		target.TextColor = *p.TextColor
	}
	if p.TextSize != nil && *p.TextSize != target.TextSize {
		record("text_size", target.TextSize, *p.TextSize)
		target.TextSize = *p.TextSize
	}
	if p.FontFamily != nil && *p.FontFamily != target.FontFamily {
		record("font_family", target.FontFamily, *p.FontFamily)
		target.FontFamily = *p.FontFamily
	}
	if p.FontStyle != nil && *p.FontStyle != target.FontStyle {
		record("font_style", target.FontStyle, *p.FontStyle)
		target.FontStyle = *p.FontStyle
	}
	if p.TextAlign != nil && *p.TextAlign != target.TextAlign {
		record("text_align", target.TextAlign, *p.TextAlign)
		target.TextAlign = *p.TextAlign
	}
	if p.VerticalAlign != nil && *p.VerticalAlign != target.VerticalAlign {
		record("vertical_align", target.VerticalAlign, *p.VerticalAlign)
		target.VerticalAlign = *p.VerticalAlign
	}
	if p.TextX != nil {
		var o any
		if target.TextX != nil {
			o = *target.TextX
		}
		record("text_x", o, *p.TextX)
		x := *p.TextX
		target.TextX = &x
	}
	if p.TextY != nil {
		var o any
		if target.TextY != nil {
			o = *target.TextY
		}
		record("text_y", o, *p.TextY)
		y := *p.TextY
		target.TextY = &y
	}
	if p.ClearTextPos && (target.TextX != nil || target.TextY != nil) {
		record("text_position", "custom", "alignment")
		target.TextX = nil
		target.TextY = nil
	}

	if changed == 0 {
		field = "none"
	}
	return field, oldVal, newVal
}

// Float returns a pointer to f, for building patches inline.
func Float(f float64) *float64 { return &f }

// Str returns a pointer to v.
func Str(v string) *string { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
