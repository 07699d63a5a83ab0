package graphics

import (
	"modelbins/internal/sim"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GLStateDevice applies family render state to the current GL context.
// Core profile has no attribute stack, so polygon state is saved by hand.
type GLStateDevice struct {
	Atlases *AtlasSet
	// RestartPrimitive gates primitive-restart indexing for S3O models.
	RestartPrimitive bool

	cullStack []bool
}

func NewGLStateDevice(atlases *AtlasSet, restart bool) *GLStateDevice {
	return &GLStateDevice{Atlases: atlases, RestartPrimitive: restart}
}

func (d *GLStateDevice) BindModelAtlases(t sim.ModelType) {
	if d.Atlases != nil {
		d.Atlases.Bind(t)
	}
}

func (d *GLStateDevice) PushPolygonState() {
	d.cullStack = append(d.cullStack, gl.IsEnabled(gl.CULL_FACE))
}

func (d *GLStateDevice) PopPolygonState() {
	n := len(d.cullStack)
	if n == 0 {
		return
	}
	d.SetCullFace(d.cullStack[n-1])
	d.cullStack = d.cullStack[:n-1]
}

func (d *GLStateDevice) SetCullFace(enabled bool) {
	if enabled {
		gl.Enable(gl.CULL_FACE)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
}

func (d *GLStateDevice) SupportsPrimitiveRestart() bool { return d.RestartPrimitive }

func (d *GLStateDevice) EnablePrimitiveRestart(index uint32) {
	gl.Enable(gl.PRIMITIVE_RESTART)
	gl.PrimitiveRestartIndex(index)
}
