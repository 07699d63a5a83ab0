package graphics

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	"modelbins/internal/logx"
	"modelbins/internal/sim"

	"github.com/go-gl/gl/v4.1-core/gl"
	xdraw "golang.org/x/image/draw"
)

// AtlasSize is the edge length every model atlas is resampled to.
const AtlasSize = 1024

// LoadAtlasImage decodes an image file and resamples it to a square RGBA
// atlas of the given size.
func LoadAtlasImage(path string, size int) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open atlas file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode atlas %s: %w", path, err)
	}
	return ResampleAtlas(img, size), nil
}

// ResampleAtlas scales img to a size x size RGBA image.
func ResampleAtlas(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	if img.Bounds().Dx() == size && img.Bounds().Dy() == size {
		xdraw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, xdraw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// CheckerAtlas builds a placeholder atlas for families without texture files.
func CheckerAtlas(size int, a, b color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := size / 8
	if cell == 0 {
		cell = 1
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, a)
			} else {
				img.SetRGBA(x, y, b)
			}
		}
	}
	return img
}

// UploadTexture uploads an RGBA image as a mipmapped 2D texture.
func UploadTexture(img *image.RGBA) uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(img.Rect.Size().X),
		int32(img.Rect.Size().Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return texture
}

// AtlasSet holds the texture atlas each model family draws from.
type AtlasSet struct {
	textures map[sim.ModelType]uint32
}

func NewAtlasSet() *AtlasSet {
	return &AtlasSet{textures: make(map[sim.ModelType]uint32)}
}

// Load uploads the atlas at path for family t. A missing or unreadable file
// falls back to a checker atlas so the family stays drawable.
func (a *AtlasSet) Load(t sim.ModelType, path string) {
	var img *image.RGBA
	if path != "" {
		var err error
		img, err = LoadAtlasImage(path, AtlasSize)
		if err != nil {
			logx.Logger().Warn("atlas not loaded, using placeholder", "family", t.String(), "err", err)
		}
	}
	if img == nil {
		img = CheckerAtlas(AtlasSize, color.RGBA{200, 200, 200, 255}, color.RGBA{90, 90, 90, 255})
	}
	if old, ok := a.textures[t]; ok {
		gl.DeleteTextures(1, &old)
	}
	a.textures[t] = UploadTexture(img)
}

// Bind binds the atlas of family t to texture unit 0. Families without an
// atlas unbind the unit.
func (a *AtlasSet) Bind(t sim.ModelType) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, a.textures[t])
}

// Dispose deletes all atlas textures.
func (a *AtlasSet) Dispose() {
	for t, tex := range a.textures {
		gl.DeleteTextures(1, &tex)
		delete(a.textures, t)
	}
}
