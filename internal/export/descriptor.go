package export

import (
	"errors"

	"github.com/bobarin/reelcut/internal/models"
	"github.com/bobarin/reelcut/internal/timeline"
	"github.com/bobarin/reelcut/internal/validate"
)

// ErrBlockingDiagnostics is returned when the scene state carries
// error-severity findings. Warnings never block an export.
var ErrBlockingDiagnostics = errors.New("export blocked by validation errors")

// Output and transition defaults, matching what the render backend expects.
const (
	defaultWidth  = 1080
	defaultHeight = 1920
	defaultFPS    = 30
	defaultCodec  = "libx264"
	defaultPixFmt = "yuv420p"
	defaultPreset = "medium"
	defaultCRF    = 23

	fadeDuration      = 0.5
	crossfadeDuration = 0.5
	audioFadeOut      = 0.5

	zoomStartScale = 1.0
	zoomEndScale   = 1.2
)

// Options tweaks the output block and supplies the text-scene backdrop
// paths selected by text color.
type Options struct {
	Width, Height int
	FPS           int
	DarkBG        string // backdrop behind white text
	LightBG       string // backdrop behind black text
}

func (o *Options) withDefaults() Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.Width <= 0 {
		out.Width = defaultWidth
	}
	if out.Height <= 0 {
		out.Height = defaultHeight
	}
	if out.FPS <= 0 {
		out.FPS = defaultFPS
	}
	return out
}

// BuildRequest resolves the editor's scene and audio state into the export
// descriptor the render backend consumes. It refuses to build while any
// error-severity diagnostic is outstanding.
func BuildRequest(project models.Project, scenes []models.Scene, audio *models.AudioRef, opts *Options) (models.ExportRequest, error) {
	diags := validate.Validate(scenes, project.TargetDuration)
	if validate.HasBlockingErrors(diags) {
		return models.ExportRequest{}, ErrBlockingDiagnostics
	}

	o := opts.withDefaults()

	total := timeline.TotalDuration(scenes)
	if d := audio.EffectiveDuration(); d > total {
		total = d
	}

	req := models.ExportRequest{
		ProjectID: project.ID,
		Output: models.ExportOutput{
			Width:       o.Width,
			Height:      o.Height,
			FPS:         o.FPS,
			Codec:       defaultCodec,
			PixelFormat: defaultPixFmt,
			Preset:      defaultPreset,
			CRF:         defaultCRF,
		},
		Timeline: models.ExportTimeline{
			TotalDuration: total,
			SceneCount:    len(scenes),
		},
	}

	if audio != nil && audio.Path != "" && !audio.Muted {
		req.Audio = &models.ExportAudio{
			Path:            audio.Path,
			Volume:          audio.Volume,
			TrimmedDuration: audio.TrimmedDuration,
			FadeOut:         audioFadeOut,
		}
	}

	start := 0.0
	for i := range scenes {
		s := &scenes[i]
		es := models.ExportScene{
			ID:        s.ID,
			StartTime: start,
			Duration:  s.Duration,
		}

		if s.Type.IsTextual() {
			es.MediaType = "text"
			es.Text = buildText(s, o)
		} else {
			es.MediaType = "image"
			es.MediaPath = s.MediaRef()
			es.Effect = buildEffect(s.VisualFX)
		}

		// Crossfade into the next scene; the last scene has no transition.
		if i < len(scenes)-1 {
			es.Transition = &models.ExportTransition{
				Type:     "crossfade",
				Duration: crossfadeDuration,
			}
		}

		req.Scenes = append(req.Scenes, es)
		start += s.Duration
	}

	return req, nil
}

func buildEffect(fx models.VisualEffect) *models.ExportEffect {
	if fx == "" {
		fx = models.EffectStatic
	}
	eff := &models.ExportEffect{Type: fx}
	switch fx {
	case models.EffectZoomIn:
		eff.StartScale = zoomStartScale
		eff.EndScale = zoomEndScale
	case models.EffectZoomOut:
		eff.StartScale = zoomEndScale
		eff.EndScale = zoomStartScale
	case models.EffectFade:
		eff.FadeDuration = fadeDuration
	case models.EffectShake:
		eff.Intensity = 5
		eff.Frequency = 20
	}
	return eff
}

func buildText(s *models.Scene, o Options) *models.ExportText {
	color := s.TextColor
	if color == "" {
		color = models.TextColorWhite
	}

	// Backdrop and solid fallback follow the text color: dark imagery
	// behind white text, light behind black.
	bg := o.DarkBG
	fallback := "#111111"
	if color == models.TextColorBlack {
		bg = o.LightBG
		fallback = "#f5f5f5"
	}
	if s.TextBG != "" {
		fallback = s.TextBG
	}

	size := s.TextSize
	if size <= 0 {
		size = 48
	}
	family := s.FontFamily
	if family == "" {
		family = "Inter"
	}
	style := s.FontStyle
	if style == "" {
		style = models.FontStyleBold
	}
	align := s.TextAlign
	if align == "" {
		align = models.AlignCenter
	}
	valign := s.VerticalAlign
	if valign == "" {
		valign = models.VAlignCenter
	}

	return &models.ExportText{
		Content:         s.TextContent,
		Color:           color,
		FontFamily:      family,
		FontSize:        size,
		FontStyle:       style,
		TextAlign:       align,
		VerticalAlign:   valign,
		X:               s.TextX,
		Y:               s.TextY,
		BackgroundImage: bg,
		FallbackColor:   fallback,
	}
}
