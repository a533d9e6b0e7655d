package preview

import (
	"math"

	"github.com/bobarin/reelcut/internal/models"
)

// Effect tuning constants. Zoom travels between 1.0 and 1.2; shake jitters
// ±5px tracing an ellipse (sine on x, cosine on y) at 20 cycles per scene.
const (
	zoomRange      = 0.2
	shakeIntensity = 5.0
	shakeFrequency = 20.0
)

// Ease is the symmetric ease-in-out curve shared by zoom and fade:
// t < 0.5 → 2t², otherwise −1+(4−2t)t.
func Ease(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// Transform is the resolved draw transform for one frame of an image scene:
// a uniform scale about the canvas center, a pixel offset, and a global
// alpha.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	Alpha   float64
}

// EffectTransform computes the transform for an effect at progress p in
// [0,1). marginX/marginY are the half-overflows of the cover-fit rendered
// image beyond the canvas, i.e. (renderedW−canvasW)/2 and
// (renderedH−canvasH)/2 — pans travel across that hidden margin.
func EffectTransform(fx models.VisualEffect, p, marginX, marginY float64) Transform {
	tr := Transform{Scale: 1, Alpha: 1}

	switch fx {
	case models.EffectZoomIn:
		tr.Scale = 1 + zoomRange*Ease(p)
	case models.EffectZoomOut:
		tr.Scale = 1 + zoomRange*(1-Ease(p))
	case models.EffectPanLeft:
		tr.OffsetX = marginX * (2*p - 1)
	case models.EffectPanRight:
		tr.OffsetX = marginX * (1 - 2*p)
	case models.EffectPanUp:
		tr.OffsetY = marginY * (2*p - 1)
	case models.EffectPanDown:
		tr.OffsetY = marginY * (1 - 2*p)
	case models.EffectFade:
		tr.Alpha = Ease(p)
	case models.EffectShake:
		phase := 2 * math.Pi * shakeFrequency * p
		tr.OffsetX = shakeIntensity * math.Sin(phase)
		tr.OffsetY = shakeIntensity * math.Cos(phase)
	}

	return tr
}

// TextFadeAlpha is the opacity envelope for text scenes: ramps 0→1 over the
// first quarter of the scene's local progress and 1→0 over the last quarter.
func TextFadeAlpha(p float64) float64 {
	switch {
	case p <= 0 || p >= 1:
		return 0
	case p < 0.25:
		return p / 0.25
	case p > 0.75:
		return (1 - p) / 0.25
	default:
		return 1
	}
}
