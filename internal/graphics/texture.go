package graphics

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// LoadTexture loads a 2D texture from a file
func LoadTexture(path string) (uint32, int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to open texture file: %v", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to decode image: %v", err)
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, image.Point{0, 0}, draw.Src)

	texture := uploadRGBA(rgba)
	return texture, rgba.Rect.Size().X, rgba.Rect.Size().Y, nil
}

// Atlas packs block textures into one square texture and answers
// normalized region lookups by texture name.
type Atlas struct {
	TextureID uint32
	Pixels    int
	regions   map[string]mgl32.Vec4
}

// BuildBlockAtlas packs every PNG under dir into a grid atlas and
// uploads it. Tile size follows the first texture; animated strip
// textures contribute their first frame. Must be called with a current
// GL context.
func BuildBlockAtlas(dir string) (*Atlas, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no textures found under %s", dir)
	}
	sort.Strings(paths)

	tiles := make(map[string]*image.RGBA, len(paths))
	names := make([]string, 0, len(paths))
	tile := 0
	for _, p := range paths {
		img, err := decodePNG(p)
		if err != nil {
			return nil, fmt.Errorf("atlas texture %s: %w", p, err)
		}
		if tile == 0 {
			tile = img.Bounds().Dx()
		}
		name := strings.TrimSuffix(filepath.Base(p), ".png")
		tiles[name] = cropTile(img, tile)
		names = append(names, name)
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(names)))))
	pixels := cols * tile
	canvas := image.NewRGBA(image.Rect(0, 0, pixels, pixels))
	regions := make(map[string]mgl32.Vec4, len(names))

	// Half-texel inset keeps linear filtering from bleeding across tiles.
	inset := 0.5 / float32(pixels)
	for i, name := range names {
		px := (i % cols) * tile
		py := (i / cols) * tile
		draw.Draw(canvas, image.Rect(px, py, px+tile, py+tile), tiles[name], image.Point{}, draw.Src)
		regions[name] = mgl32.Vec4{
			float32(px)/float32(pixels) + inset,
			float32(py)/float32(pixels) + inset,
			float32(px+tile)/float32(pixels) - inset,
			float32(py+tile)/float32(pixels) - inset,
		}
	}

	return &Atlas{
		TextureID: uploadRGBA(canvas),
		Pixels:    pixels,
		regions:   regions,
	}, nil
}

// Region returns the normalized atlas box for a texture reference.
// Path-style references ("block/stone", "minecraft:block/stone")
// resolve by their base name.
func (a *Atlas) Region(texture string) (mgl32.Vec4, bool) {
	name := texture
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	name = filepath.Base(name)
	r, ok := a.regions[name]
	return r, ok
}

// Bind binds the atlas texture to the given texture unit.
func (a *Atlas) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, a.TextureID)
}

func decodePNG(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// cropTile takes the top tile×tile square of an image, which for
// animated strip textures is the first animation frame.
func cropTile(img *image.RGBA, tile int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, tile, tile))
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func uploadRGBA(rgba *image.RGBA) uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(rgba.Rect.Size().X),
		int32(rgba.Rect.Size().Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba.Pix),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture
}
