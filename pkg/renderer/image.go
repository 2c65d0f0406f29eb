package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/entity"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

// ImageOptions controls raster output
type ImageOptions struct {
	Width        int
	Height       int
	Background   colorful.Color
	DrawEntities bool
}

// DefaultImageOptions returns an 800x600 image on a near-black background
func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		Width:        800,
		Height:       600,
		Background:   colorful.Color{R: 0.02, G: 0.02, B: 0.04},
		DrawEntities: true,
	}
}

// Outline colours per entity kind
var entityColors = map[entity.Kind]colorful.Color{
	entity.KindLaser:    {R: 0.9, G: 0.3, B: 0.2},
	entity.KindMirror:   {R: 0.75, G: 0.8, B: 0.85},
	entity.KindWall:     {R: 0.35, G: 0.35, B: 0.35},
	entity.KindTarget:   {R: 0.9, G: 0.75, B: 0.1},
	entity.KindLens:     {R: 0.4, G: 0.7, B: 0.95},
	entity.KindPrism:    {R: 0.6, G: 0.9, B: 0.95},
	entity.KindSplitter: {R: 0.6, G: 0.6, B: 0.9},
	entity.KindFilter:   {R: 0.8, G: 0.8, B: 0.8},
	entity.KindWormhole: {R: 0.7, G: 0.3, B: 0.9},
}

type polygonal interface {
	Vertices() []core.Vec2
}

// canvas accumulates light in linear RGB so overlapping beams add up
type canvas struct {
	width, height int
	scaleX        float64
	scaleY        float64
	linear        []float64
}

func newCanvas(opts ImageOptions, sceneWidth, sceneHeight float64) *canvas {
	c := &canvas{
		width:  opts.Width,
		height: opts.Height,
		scaleX: float64(opts.Width) / sceneWidth,
		scaleY: float64(opts.Height) / sceneHeight,
		linear: make([]float64, 3*opts.Width*opts.Height),
	}
	r, g, b := opts.Background.LinearRgb()
	for i := 0; i < len(c.linear); i += 3 {
		c.linear[i], c.linear[i+1], c.linear[i+2] = r, g, b
	}
	return c
}

func (c *canvas) add(x, y int, col colorful.Color, weight float64) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	r, g, b := col.LinearRgb()
	i := 3 * (y*c.width + x)
	c.linear[i] += r * weight
	c.linear[i+1] += g * weight
	c.linear[i+2] += b * weight
}

func (c *canvas) toPixel(p core.Vec2) (float64, float64) {
	return p.X * c.scaleX, p.Y * c.scaleY
}

// line walks the segment one pixel per step along its major axis
func (c *canvas) line(p1, p2 core.Vec2, col colorful.Color, weight float64) {
	x1, y1 := c.toPixel(p1)
	x2, y2 := c.toPixel(p2)
	dx, dy := x2-x1, y2-y1
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		c.add(int(x1), int(y1), col, weight)
		return
	}
	// Escape segments can run far outside the image
	if steps > 4*(c.width+c.height) {
		steps = 4 * (c.width + c.height)
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.add(int(math.Floor(x1+dx*t)), int(math.Floor(y1+dy*t)), col, weight)
	}
}

func (c *canvas) circle(center core.Vec2, radius float64, col colorful.Color, weight float64, fill bool) {
	cx, cy := c.toPixel(center)
	rx, ry := radius*c.scaleX, radius*c.scaleY
	if fill {
		for y := int(cy - ry); y <= int(cy+ry); y++ {
			for x := int(cx - rx); x <= int(cx+rx); x++ {
				nx, ny := (float64(x)-cx)/rx, (float64(y)-cy)/ry
				if nx*nx+ny*ny <= 1 {
					c.add(x, y, col, weight)
				}
			}
		}
		return
	}
	steps := int(math.Max(16, 2*math.Pi*math.Max(rx, ry)))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.add(int(cx+rx*math.Cos(a)), int(cy+ry*math.Sin(a)), col, weight)
	}
}

func (c *canvas) image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			i := 3 * (y*c.width + x)
			r, g, b := colorful.LinearRgb(c.linear[i], c.linear[i+1], c.linear[i+2]).Clamped().RGB255()
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// RenderImage rasterizes traced segments, and optionally the scene's
// entities, with additive colour blending
func RenderImage(segments []Segment, s *scene.Scene, opts ImageOptions) *image.RGBA {
	if opts.Width <= 0 || opts.Height <= 0 {
		defaults := DefaultImageOptions()
		opts.Width, opts.Height = defaults.Width, defaults.Height
	}
	sceneWidth, sceneHeight := scene.DefaultWidth, scene.DefaultHeight
	if s != nil {
		sceneWidth, sceneHeight = s.Width, s.Height
	}

	c := newCanvas(opts, sceneWidth, sceneHeight)

	if s != nil && opts.DrawEntities {
		for _, e := range s.Entities() {
			drawEntity(c, e)
		}
	}

	for _, segment := range segments {
		c.line(segment.P1, segment.P2, segment.Color.RGB(), segment.Intensity)
	}

	return c.image()
}

func drawEntity(c *canvas, e entity.Entity) {
	col, ok := entityColors[e.Kind()]
	if !ok {
		col = colorful.Color{R: 1, G: 1, B: 1}
	}

	switch shape := e.(type) {
	case *entity.Target:
		if shape.IsHit() {
			c.circle(shape.Position, shape.Radius, shape.HitColor().RGB(), 0.5, true)
		}
		c.circle(shape.Position, shape.Radius, col, 0.8, false)
	case *entity.Wormhole:
		c.circle(shape.Position, shape.Radius, col, 0.8, false)
		// Spin marker
		tip := shape.Position.Add(core.FromAngle(shape.Angle).Multiply(shape.Radius))
		c.line(shape.Position, tip, col, 0.8)
	case *entity.Filter:
		drawPolygon(c, shape.Vertices(), shape.PassColor.RGB(), 0.8)
	case polygonal:
		drawPolygon(c, shape.Vertices(), col, 0.8)
	}
}

func drawPolygon(c *canvas, vertices []core.Vec2, col colorful.Color, weight float64) {
	for i := range vertices {
		c.line(vertices[i], vertices[(i+1)%len(vertices)], col, weight)
	}
}

// SavePNG writes an image to path as PNG
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return nil
}
