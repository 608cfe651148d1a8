package extensions

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"strings"

	"fortio.org/log"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"zds.io/zds/object"
)

// MaxImageSize bounds window (and so panel) width and height.
const MaxImageSize = 4096

// Coordinates, sizes and thicknesses must be within +/- maxCoordinate, the
// rasterizer misbehaves far outside of the image.
const maxCoordinate = 8 * MaxImageSize

// Segments used to approximate circles.
const circleSegments = 72

var transparent = color.RGBA{}

// lookupColor resolves SVG color names, case insensitive ("Red", "red").
func lookupColor(name string) (color.RGBA, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "transparent" {
		return transparent, true
	}
	c, ok := colornames.Map[n]
	return c, ok
}

// colorOrBlack: unknown color names draw in black.
func colorOrBlack(name string) color.RGBA {
	c, ok := lookupColor(name)
	if !ok {
		log.Warnf("Unknown color %q, using black", name)
		return colornames.Black
	}
	return c
}

// Panel is an off screen RGBA drawing surface.
type Panel struct {
	img     *image.RGBA
	z       *vector.Rasterizer
	updates int
}

func NewPanel(width, height int) *Panel {
	p := &Panel{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		z:   vector.NewRasterizer(width, height),
	}
	p.clear()
	return p
}

var panelMembers = []string{
	"Width", "Height", "Updates",
	"Clear", "Update", "FillRectangle", "DrawRectangle", "FillCircle", "DrawCircle", "DrawLine", "DrawText", "Save",
}

func (p *Panel) Type() object.Type { return object.HOST }
func (p *Panel) Inspect() string   { return "[Panel Object]" }
func (p *Panel) Kind() string      { return "panel" }
func (p *Panel) Members() []string { return panelMembers }

// Image is the current content, shared (not a copy).
func (p *Panel) Image() *image.RGBA {
	return p.img
}

func (p *Panel) GetProperty(name string) object.Object {
	b := p.img.Bounds()
	switch name {
	case "Width":
		return object.Number{Value: float64(b.Dx())}
	case "Height":
		return object.Number{Value: float64(b.Dy())}
	case "Updates":
		return object.Number{Value: float64(p.updates)}
	default:
		return nil
	}
}

func (p *Panel) clear() {
	draw.Draw(p.img, p.img.Bounds(), &image.Uniform{transparent}, image.Point{}, draw.Src)
}

// fill rasterizes the path built by path() with color c.
func (p *Panel) fill(c color.RGBA, path func(z *vector.Rasterizer)) {
	b := p.img.Bounds()
	p.z.Reset(b.Dx(), b.Dy())
	path(p.z)
	p.z.Draw(p.img, b, image.NewUniform(c), image.Point{})
}

func f32(v float64) float32 {
	return float32(v)
}

// rect adds a closed rectangle, clockwise unless reverse is set. Opposite
// windings cancel: that is how outlines get their hole.
func rect(z *vector.Rasterizer, x, y, w, h float64, reverse bool) {
	z.MoveTo(f32(x), f32(y))
	if reverse {
		z.LineTo(f32(x), f32(y+h))
		z.LineTo(f32(x+w), f32(y+h))
		z.LineTo(f32(x+w), f32(y))
	} else {
		z.LineTo(f32(x+w), f32(y))
		z.LineTo(f32(x+w), f32(y+h))
		z.LineTo(f32(x), f32(y+h))
	}
	z.ClosePath()
}

func circle(z *vector.Rasterizer, cx, cy, r float64, reverse bool) {
	z.MoveTo(f32(cx+r), f32(cy))
	for i := 1; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		if reverse {
			a = -a
		}
		z.LineTo(f32(cx+r*math.Cos(a)), f32(cy+r*math.Sin(a)))
	}
	z.ClosePath()
}

func (p *Panel) FillRectangle(c color.RGBA, x, y, w, h float64) {
	p.fill(c, func(z *vector.Rasterizer) { rect(z, x, y, w, h, false) })
}

// DrawRectangle strokes the outline, the pen is centered on the edges.
func (p *Panel) DrawRectangle(c color.RGBA, x, y, w, h, thickness float64) {
	t := thickness / 2
	p.fill(c, func(z *vector.Rasterizer) {
		rect(z, x-t, y-t, w+2*t, h+2*t, false)
		if w > 2*t && h > 2*t {
			rect(z, x+t, y+t, w-2*t, h-2*t, true)
		}
	})
}

func (p *Panel) FillCircle(c color.RGBA, cx, cy, r float64) {
	p.fill(c, func(z *vector.Rasterizer) { circle(z, cx, cy, r, false) })
}

func (p *Panel) DrawCircle(c color.RGBA, cx, cy, r, thickness float64) {
	t := thickness / 2
	p.fill(c, func(z *vector.Rasterizer) {
		circle(z, cx, cy, r+t, false)
		if r > t {
			circle(z, cx, cy, r-t, true)
		}
	})
}

func (p *Panel) DrawLine(c color.RGBA, x1, y1, x2, y2, thickness float64) {
	dx, dy := x2-x1, y2-y1
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	// half thickness normal.
	nx, ny := -dy/l*thickness/2, dx/l*thickness/2
	p.fill(c, func(z *vector.Rasterizer) {
		z.MoveTo(f32(x1+nx), f32(y1+ny))
		z.LineTo(f32(x2+nx), f32(y2+ny))
		z.LineTo(f32(x2-nx), f32(y2-ny))
		z.LineTo(f32(x1-nx), f32(y1-ny))
		z.ClosePath()
	})
}

// DrawText draws with the fixed 7x13 font, (x, y) is the top left corner.
func (p *Panel) DrawText(str string, c color.RGBA, x, y float64) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(int(x), int(y)+face.Ascent),
	}
	d.DrawString(str)
}

func (p *Panel) Save(file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	err = png.Encode(f, p.img)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// floats extracts the numeric arguments, non numbers stay 0.
func floats(args []object.Object) []float64 {
	res := make([]float64, len(args))
	for i, a := range args {
		if n, ok := a.(object.Number); ok {
			res[i] = n.Value
		}
	}
	return res
}

// checkCoordinates rejects NaN, infinities and values too far out.
func checkCoordinates(name string, v []float64) *object.Error {
	for i, f := range v {
		if math.IsNaN(f) || f < -maxCoordinate || f > maxCoordinate {
			e := object.Errorf("panel.%s: argument #%d must be between %d and %d, got %s",
				name, i+1, -maxCoordinate, maxCoordinate, object.Number{Value: f}.Inspect())
			return &e
		}
	}
	return nil
}

// drawArgs checks the argument types, then the range of the numbers.
func drawArgs(name string, args []object.Object, minArgs int, types ...object.Type) ([]float64, *object.Error) {
	if oerr := checkArgs("panel", name, args, minArgs, types...); oerr != nil {
		return nil, oerr
	}
	v := floats(args)
	return v, checkCoordinates(name, v)
}

// withThickness returns the optional last argument or 1.
func withThickness(v []float64, n int) float64 {
	if len(v) > n {
		return v[n]
	}
	return 1
}

func (p *Panel) CallMethod(_ any, name string, args []object.Object) object.Object { //nolint:funlen // one case per method.
	N, S := object.NUMBER, object.STRING
	var oerr *object.Error
	var v []float64
	switch name {
	case "Clear":
		if oerr = checkArgs("panel", name, args, 0); oerr == nil {
			p.clear()
		}
	case "Update":
		if oerr = checkArgs("panel", name, args, 0); oerr == nil {
			p.updates++
			log.Debugf("panel update %d", p.updates)
		}
	case "FillRectangle":
		if v, oerr = drawArgs(name, args, 5, S, N, N, N, N); oerr == nil {
			p.FillRectangle(colorOrBlack(args[0].Inspect()), v[1], v[2], v[3], v[4])
		}
	case "DrawRectangle":
		if v, oerr = drawArgs(name, args, 5, S, N, N, N, N, N); oerr == nil {
			p.DrawRectangle(colorOrBlack(args[0].Inspect()), v[1], v[2], v[3], v[4], withThickness(v, 5))
		}
	case "FillCircle":
		if v, oerr = drawArgs(name, args, 4, S, N, N, N); oerr == nil {
			p.FillCircle(colorOrBlack(args[0].Inspect()), v[1], v[2], v[3])
		}
	case "DrawCircle":
		if v, oerr = drawArgs(name, args, 4, S, N, N, N, N); oerr == nil {
			p.DrawCircle(colorOrBlack(args[0].Inspect()), v[1], v[2], v[3], withThickness(v, 4))
		}
	case "DrawLine":
		if v, oerr = drawArgs(name, args, 5, S, N, N, N, N, N); oerr == nil {
			p.DrawLine(colorOrBlack(args[0].Inspect()), v[1], v[2], v[3], v[4], withThickness(v, 5))
		}
	case "DrawText":
		// The font size is accepted for compatibility, the font is fixed.
		if v, oerr = drawArgs(name, args, 4, S, S, N, N, N); oerr == nil {
			p.DrawText(args[0].Inspect(), colorOrBlack(args[1].Inspect()), v[2], v[3])
		}
	case "Save":
		if oerr = checkArgs("panel", name, args, 1, S); oerr != nil {
			break
		}
		file, err := sanitizeFileName(args[0].Inspect())
		if err == nil {
			err = p.Save(file)
		}
		if err != nil {
			return object.Errorf("panel.Save: %v", err)
		}
		log.Infof("Saved panel to %s", file)
		return object.String{Value: file}
	default:
		return nil
	}
	if oerr != nil {
		return *oerr
	}
	return object.NULL
}
