package graphics

import (
	"modelbins/internal/config"
	"modelbins/internal/graphics/renderer"
	"modelbins/internal/graphics/text"

	"github.com/go-gl/mathgl/mgl32"
)

// StatsOverlay is a render pass printing a few lines of text in the top-left
// corner. Lines is called once per frame while the overlay is visible.
type StatsOverlay struct {
	Lines   func() []string
	Visible bool

	font *FontRenderer
}

const overlayFontPx = 16

func (o *StatsOverlay) Init() error {
	atlas, err := text.Bake(text.DefaultFont(), overlayFontPx)
	if err != nil {
		return err
	}
	w, h := config.GetViewport()
	o.font, err = NewFontRenderer(atlas, w, h)
	return err
}

func (o *StatsOverlay) Render(renderer.RenderContext) {
	if !o.Visible || o.Lines == nil {
		return
	}
	o.font.RenderLines(o.Lines(), 12, 12+o.font.LineHeight(1), 1, mgl32.Vec3{0.95, 0.95, 0.85})
}

func (o *StatsOverlay) SetViewport(width, height int) { o.font.SetViewport(width, height) }

func (o *StatsOverlay) Dispose() {
	if o.font != nil {
		o.font.Dispose()
	}
}

var _ renderer.Renderable = (*StatsOverlay)(nil)
