package preview

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/bobarin/reelcut/internal/models"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// typeTints color the placeholder gradient for scenes without media.
var typeTints = map[models.SceneType]color.NRGBA{
	models.SceneTypeHook:           {R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff},
	models.SceneTypeBuildup:        {R: 0xe6, G: 0x7e, B: 0x22, A: 0xff},
	models.SceneTypeText:           {R: 0x34, G: 0x49, B: 0x5e, A: 0xff},
	models.SceneTypePeak:           {R: 0x9b, G: 0x59, B: 0xb6, A: 0xff},
	models.SceneTypeTransition:     {R: 0x95, G: 0xa5, B: 0xa6, A: 0xff},
	models.SceneTypeCTA:            {R: 0x27, G: 0xae, B: 0x60, A: 0xff},
	models.SceneTypeSpeaker:        {R: 0x29, G: 0x80, B: 0xb9, A: 0xff},
	models.SceneTypeFinalStatement: {R: 0x2c, G: 0x3e, B: 0x50, A: 0xff},
}

// RenderFrame draws the scene active at time t and returns the frame. Past
// the end of the timeline it returns a black frame. The frame callback, if
// installed, receives every rendered frame.
func (e *Engine) RenderFrame(t float64) *image.RGBA {
	e.mu.Lock()

	frame := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	fillRect(frame, frame.Bounds(), color.NRGBA{A: 0xff})

	scene, progress := e.sceneAtLocked(t)
	if scene != nil {
		if scene.Type.IsTextual() {
			e.renderTextSceneLocked(frame, scene, progress)
		} else {
			e.renderImageSceneLocked(frame, scene, progress)
			e.lastTextBounds = image.Rectangle{}
			e.lastTextScene = 0
		}
	}

	cb := e.frameCB
	e.mu.Unlock()

	if cb != nil {
		cb(frame, t)
	}
	return frame
}

// renderImageSceneLocked draws the scene media cover-fit (aspect preserved,
// longer dimension cropped) and applies the scene's effect transform.
func (e *Engine) renderImageSceneLocked(dst *image.RGBA, scene *models.Scene, progress float64) {
	src, ok := e.cache.Get(scene.MediaRef())
	if !ok {
		e.renderPlaceholderLocked(dst, scene)
		return
	}

	sb := src.Bounds()
	iw, ih := float64(sb.Dx()), float64(sb.Dy())
	cw, ch := float64(e.width), float64(e.height)
	if iw == 0 || ih == 0 {
		e.renderPlaceholderLocked(dst, scene)
		return
	}

	// Cover fit: scale so the image fills the canvas, cropping the overflow.
	cover := cw / iw
	if s := ch / ih; s > cover {
		cover = s
	}
	marginX := (iw*cover - cw) / 2
	marginY := (ih*cover - ch) / 2

	tr := EffectTransform(scene.VisualFX, progress, marginX, marginY)

	scale := cover * tr.Scale
	rw, rh := iw*scale, ih*scale
	x0 := cw/2 - rw/2 + tr.OffsetX
	y0 := ch/2 - rh/2 + tr.OffsetY
	dr := image.Rect(int(x0), int(y0), int(x0+rw), int(y0+rh))

	var opts *xdraw.Options
	if tr.Alpha < 1 {
		a := uint8(clamp(tr.Alpha, 0, 1) * 0xff)
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: a})}
	}
	xdraw.ApproxBiLinear.Scale(dst, dr, src, sb, xdraw.Over, opts)
}

// renderPlaceholderLocked draws the missing-media stand-in: a vertical
// gradient tinted by the scene type plus the type name and id centered.
func (e *Engine) renderPlaceholderLocked(dst *image.RGBA, scene *models.Scene) {
	tint, ok := typeTints[scene.Type]
	if !ok {
		tint = color.NRGBA{R: 0x7f, G: 0x8c, B: 0x8d, A: 0xff}
	}

	h := dst.Bounds().Dy()
	for y := 0; y < h; y++ {
		// Darken toward the bottom.
		f := 1 - 0.6*float64(y)/float64(h)
		row := color.NRGBA{
			R: uint8(float64(tint.R) * f),
			G: uint8(float64(tint.G) * f),
			B: uint8(float64(tint.B) * f),
			A: 0xff,
		}
		fillRect(dst, image.Rect(0, y, dst.Bounds().Dx(), y+1), row)
	}

	label := fmt.Sprintf("%s · scene %d", scene.Type, scene.ID)
	face := e.fonts.Face("Inter", models.FontStyleBold, 36)
	width := font.MeasureString(face, label).Ceil()
	m := face.Metrics()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		Face: face,
		Dot: fixed.P(
			(e.width-width)/2,
			e.height/2+(m.Ascent-m.Descent).Ceil()/2,
		),
	}
	d.DrawString(label)
}

// renderTextSceneLocked draws the text-scene backdrop, then the word-wrapped
// content with its fade envelope.
func (e *Engine) renderTextSceneLocked(dst *image.RGBA, scene *models.Scene, progress float64) {
	// Backdrop keyed by text color: dark imagery behind white text, light
	// behind black. Solid fill when no backdrop image is loaded.
	bgKey := TextBGDarkKey
	fallback := color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff}
	if scene.TextColor == models.TextColorBlack {
		bgKey = TextBGLightKey
		fallback = color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
	}
	if c, ok := parseHexColor(scene.TextBG); ok {
		fallback = c
	}

	if bg, ok := e.cache.Get(bgKey); ok {
		coverDraw(dst, bg, e.width, e.height)
	} else {
		fillRect(dst, dst.Bounds(), fallback)
	}

	if scene.TextContent == "" {
		return
	}

	face := e.fonts.Face(scene.FontFamily, scene.FontStyle, scene.TextSize)
	maxWidth := e.width * 9 / 10
	lines := wrapText(face, scene.TextContent, maxWidth)

	alpha := TextFadeAlpha(progress)
	col := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: uint8(alpha * 0xff)}
	if scene.TextColor == models.TextColorBlack {
		col = color.NRGBA{A: uint8(alpha * 0xff)}
	}

	m := face.Metrics()
	lineHeight := m.Height.Ceil()
	blockHeight := lineHeight * len(lines)
	inset := e.height / 20 // 5%

	// Vertical: custom percentage centers the block; otherwise alignment.
	var top int
	if scene.TextY != nil {
		top = int(*scene.TextY/100*float64(e.height)) - blockHeight/2
	} else {
		switch scene.VerticalAlign {
		case models.VAlignTop:
			top = inset
		case models.VAlignBottom:
			top = e.height - blockHeight - inset
		default:
			top = (e.height - blockHeight) / 2
		}
	}

	bounds := image.Rectangle{Min: image.Point{X: e.width, Y: top}, Max: image.Point{Y: top + blockHeight}}
	y := top + m.Ascent.Ceil()
	hInset := e.width / 20
	for _, line := range lines {
		lineWidth := font.MeasureString(face, line).Ceil()

		var x int
		if scene.TextX != nil {
			x = int(*scene.TextX/100*float64(e.width)) - lineWidth/2
		} else {
			switch scene.TextAlign {
			case models.AlignLeft:
				x = hInset
			case models.AlignRight:
				x = e.width - lineWidth - hInset
			default:
				x = (e.width - lineWidth) / 2
			}
		}

		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  fixed.P(x, y),
		}
		d.DrawString(line)

		if x < bounds.Min.X {
			bounds.Min.X = x
		}
		if x+lineWidth > bounds.Max.X {
			bounds.Max.X = x + lineWidth
		}
		y += lineHeight
	}

	e.lastTextBounds = bounds
	e.lastTextScene = scene.ID
}

// HitTestText reports whether the canvas point lies inside the last
// rendered text block.
func (e *Engine) HitTestText(x, y int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastTextScene != 0 && image.Pt(x, y).In(e.lastTextBounds)
}

// PointerToPercent converts a canvas point to percentage coordinates for a
// text drag, clamped to 5–95 so text cannot be dragged off screen. The
// caller applies the result as a scene patch through the store and
// re-renders; the engine never mutates caller-owned scenes.
func (e *Engine) PointerToPercent(x, y int) (px, py float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	px = clamp(float64(x)/float64(e.width)*100, 5, 95)
	py = clamp(float64(y)/float64(e.height)*100, 5, 95)
	return px, py
}

// wrapText breaks text into lines that fit maxWidth using the face's real
// metrics. A single overlong word gets its own line rather than being
// broken mid-word.
func wrapText(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if font.MeasureString(face, candidate).Ceil() <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)
	return lines
}

// coverDraw scales src to cover a w×h destination, cropping the overflow.
func coverDraw(dst *image.RGBA, src image.Image, w, h int) {
	sb := src.Bounds()
	iw, ih := float64(sb.Dx()), float64(sb.Dy())
	if iw == 0 || ih == 0 {
		return
	}
	scale := float64(w) / iw
	if s := float64(h) / ih; s > scale {
		scale = s
	}
	rw, rh := iw*scale, ih*scale
	x0 := float64(w)/2 - rw/2
	y0 := float64(h)/2 - rh/2
	dr := image.Rect(int(x0), int(y0), int(x0+rw), int(y0+rh))
	xdraw.ApproxBiLinear.Scale(dst, dr, src, sb, xdraw.Over, nil)
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.Set(x, y, c)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// parseHexColor parses "#rgb" and "#rrggbb".
func parseHexColor(s string) (color.NRGBA, bool) {
	if len(s) == 0 || s[0] != '#' {
		return color.NRGBA{}, false
	}
	hex := s[1:]
	var r, g, b uint8
	switch len(hex) {
	case 3:
		if _, err := fmt.Sscanf(hex, "%1x%1x%1x", &r, &g, &b); err != nil {
			return color.NRGBA{}, false
		}
		r, g, b = r*17, g*17, b*17
	case 6:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
			return color.NRGBA{}, false
		}
	default:
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, true
}
