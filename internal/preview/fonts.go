package preview

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bobarin/reelcut/internal/models"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// styleSuffix maps a scene font style to the conventional TTF file suffix.
var styleSuffix = map[models.FontStyle]string{
	models.FontStyleBold:       "Bold",
	models.FontStyleNormal:     "Regular",
	models.FontStyleLight:      "Light",
	models.FontStyleItalic:     "Italic",
	models.FontStyleBoldItalic: "BoldItalic",
}

// FontSet loads TTF files from a directory, named "<Family>-<Style>.ttf"
// with spaces stripped from the family ("Open Sans" → "OpenSans-Bold.ttf").
// Faces are cached per family/style/size. Anything that fails to load falls
// back through the Regular cut to a built-in bitmap face, so text always
// renders with real metrics of some face.
type FontSet struct {
	dir string

	mu    sync.Mutex
	fonts map[string]*sfnt.Font // family-style → parsed font
	faces map[string]font.Face  // family-style-size → face
}

func NewFontSet(dir string) *FontSet {
	return &FontSet{
		dir:   dir,
		fonts: make(map[string]*sfnt.Font),
		faces: make(map[string]font.Face),
	}
}

// Face resolves a rendering face for the given family, style, and pixel
// size.
func (fs *FontSet) Face(family string, style models.FontStyle, sizePx int) font.Face {
	if family == "" {
		family = "Inter"
	}
	if style == "" {
		style = models.FontStyleNormal
	}
	if sizePx <= 0 {
		sizePx = 48
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := fmt.Sprintf("%s-%s-%d", family, style, sizePx)
	if face, ok := fs.faces[key]; ok {
		return face
	}

	fnt := fs.parsedLocked(family, style)
	if fnt == nil && style != models.FontStyleNormal {
		fnt = fs.parsedLocked(family, models.FontStyleNormal)
	}
	if fnt == nil {
		fs.faces[key] = basicfont.Face7x13
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72, // size is already in pixels
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("[Fonts] face creation failed for %s: %v", key, err)
		fs.faces[key] = basicfont.Face7x13
		return basicfont.Face7x13
	}

	fs.faces[key] = face
	return face
}

func (fs *FontSet) parsedLocked(family string, style models.FontStyle) *sfnt.Font {
	suffix := styleSuffix[style]
	if suffix == "" {
		suffix = "Regular"
	}
	key := family + "-" + suffix
	if fnt, ok := fs.fonts[key]; ok {
		return fnt
	}

	name := strings.ReplaceAll(family, " ", "") + "-" + suffix + ".ttf"
	data, err := os.ReadFile(filepath.Join(fs.dir, name))
	if err != nil {
		fs.fonts[key] = nil
		return nil
	}

	fnt, err := opentype.Parse(data)
	if err != nil {
		log.Printf("[Fonts] parse failed for %s: %v", name, err)
		fs.fonts[key] = nil
		return nil
	}

	fs.fonts[key] = fnt
	return fnt
}
