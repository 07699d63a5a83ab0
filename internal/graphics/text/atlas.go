// Package text bakes TrueType glyphs into an alpha atlas and lays out quads
// for it. Uploading and drawing is left to the GL side.
package text

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Glyph describes a single character's placement and metrics within the atlas
type Glyph struct {
	// Pixel coordinates of the glyph in the atlas (top-left origin)
	AtlasX, AtlasY float32
	Width, Height  float32
	// offset from the pen position on the baseline
	BearingX, BearingY float32
	Advance            int
}

// Atlas is a baked glyph set.
type Atlas struct {
	Image  *image.Alpha
	Glyphs map[rune]Glyph
	// Line is the recommended distance between baselines in pixels
	Line float32
}

const (
	firstRune = ' '
	lastRune  = '~'
	atlasW    = 512
	padding   = 1
)

var ErrEmptyFont = errors.New("text: font has no printable glyphs")

// DefaultFont is the Go Mono face shipped with x/image.
func DefaultFont() []byte { return gomono.TTF }

// Bake rasterizes the printable ASCII range of ttf at px pixels.
func Bake(ttf []byte, px int) (*Atlas, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(px), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer func() { _ = face.Close() }()

	// First pass: pack rows to find the atlas height
	offsetX, offsetY, rowH := 0, 0, 0
	for r := rune(firstRune); r <= lastRune; r++ {
		dr, _, _, _, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		if offsetX+dr.Dx()+padding > atlasW {
			offsetX = 0
			offsetY += rowH + padding
			rowH = 0
		}
		offsetX += dr.Dx() + padding
		rowH = max(rowH, dr.Dy())
	}
	atlasH := nextPow2(offsetY + rowH + padding)

	img := image.NewAlpha(image.Rect(0, 0, atlasW, atlasH))
	glyphs := make(map[rune]Glyph, lastRune-firstRune+1)

	// Second pass: render each glyph into the atlas and record metrics
	offsetX, offsetY, rowH = 0, 0, 0
	for r := rune(firstRune); r <= lastRune; r++ {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		g := Glyph{
			BearingX: float32(dr.Min.X),
			BearingY: float32(-dr.Min.Y),
			Advance:  int(math.Round(float64(advance) / 64.0)),
		}
		gw, gh := dr.Dx(), dr.Dy()
		if gw == 0 || gh == 0 || mask == nil {
			// space and friends only advance the pen
			glyphs[r] = g
			continue
		}
		if offsetX+gw+padding > atlasW {
			offsetX = 0
			offsetY += rowH + padding
			rowH = 0
		}
		draw.Draw(img, image.Rect(offsetX, offsetY, offsetX+gw, offsetY+gh), mask, maskp, draw.Src)

		g.AtlasX, g.AtlasY = float32(offsetX), float32(offsetY)
		g.Width, g.Height = float32(gw), float32(gh)
		glyphs[r] = g

		offsetX += gw + padding
		rowH = max(rowH, gh)
	}
	if len(glyphs) == 0 {
		return nil, ErrEmptyFont
	}

	line := float32(face.Metrics().Height.Round())
	return &Atlas{Image: img, Glyphs: glyphs, Line: line}, nil
}

func nextPow2(v int) int {
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

// Measure returns the width and tallest glyph height of s at scale.
func (a *Atlas) Measure(s string, scale float32) (w, h float32) {
	for _, r := range s {
		g, ok := a.Glyphs[r]
		if !ok {
			g = a.Glyphs[' ']
		}
		w += float32(g.Advance) * scale
		h = max(h, g.Height*scale)
	}
	return w, h
}

// Layout appends two triangles per visible glyph of s to dst, starting with
// the pen at (x, y) on the baseline. Each vertex is x, y, u, v.
func (a *Atlas) Layout(dst []float32, s string, x, y, scale float32) []float32 {
	aw := float32(a.Image.Rect.Dx())
	ah := float32(a.Image.Rect.Dy())
	for _, r := range s {
		g, ok := a.Glyphs[r]
		if !ok {
			x += float32(a.Glyphs[' '].Advance) * scale
			continue
		}
		if g.Width > 0 {
			xPos := x + g.BearingX*scale
			yPos := y - g.BearingY*scale
			w, h := g.Width*scale, g.Height*scale
			u0, v0 := g.AtlasX/aw, g.AtlasY/ah
			u1, v1 := (g.AtlasX+g.Width)/aw, (g.AtlasY+g.Height)/ah

			dst = append(dst,
				xPos, yPos+h, u0, v1,
				xPos, yPos, u0, v0,
				xPos+w, yPos, u1, v0,

				xPos, yPos+h, u0, v1,
				xPos+w, yPos, u1, v0,
				xPos+w, yPos+h, u1, v1,
			)
		}
		x += float32(g.Advance) * scale
	}
	return dst
}
