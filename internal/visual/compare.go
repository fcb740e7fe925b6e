package visual

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

const (
	defaultMaxDiffPixels     = 1000
	defaultMaxDiffPixelRatio = 0.02

	// Максимально возможная дельта в YIQ пространстве.
	maxYIQDelta = 35215.0
)

type CompareOptions struct {
	Threshold         float64
	MaxDiffPixels     int
	MaxDiffPixelRatio float64
	Mode              string
	// ScaleToFit масштабирует actual к размеру baseline перед сравнением.
	ScaleToFit bool
}

type Result struct {
	Width        int
	Height       int
	ActualWidth  int
	ActualHeight int
	DiffPixels   int
	TotalPixels  int
	Ratio        float64
	SizeMismatch bool
	Passed       bool
	Diff         *image.RGBA
}

// Compare сравнивает изображения попиксельно. Пиксель считается отличающимся,
// если перцептивная дельта превышает Threshold. Проверка проходит, только если
// размеры совпадают и соблюдены оба бюджета: абсолютный и относительный.
func Compare(baseline, actual image.Image, opts CompareOptions) Result {
	if opts.MaxDiffPixels <= 0 {
		opts.MaxDiffPixels = defaultMaxDiffPixels
	}
	if opts.MaxDiffPixelRatio <= 0 {
		opts.MaxDiffPixelRatio = defaultMaxDiffPixelRatio
	}

	bb, ab := baseline.Bounds(), actual.Bounds()
	res := Result{
		Width:        bb.Dx(),
		Height:       bb.Dy(),
		ActualWidth:  ab.Dx(),
		ActualHeight: ab.Dy(),
	}

	if bb.Dx() != ab.Dx() || bb.Dy() != ab.Dy() {
		if !opts.ScaleToFit {
			res.SizeMismatch = true
			res.TotalPixels = max(bb.Dx()*bb.Dy(), ab.Dx()*ab.Dy())
			res.DiffPixels = res.TotalPixels
			res.Ratio = 1
			return res
		}
		actual = Scale(actual, bb.Dx(), bb.Dy())
		ab = actual.Bounds()
	}

	res.TotalPixels = bb.Dx() * bb.Dy()
	if res.TotalPixels == 0 {
		res.Passed = true
		return res
	}

	delta := pixelDelta(opts.Mode, opts.Threshold)
	diff := image.NewRGBA(image.Rect(0, 0, bb.Dx(), bb.Dy()))
	for y := 0; y < bb.Dy(); y++ {
		for x := 0; x < bb.Dx(); x++ {
			c1 := baseline.At(bb.Min.X+x, bb.Min.Y+y)
			c2 := actual.At(ab.Min.X+x, ab.Min.Y+y)
			if delta(c1, c2) {
				res.DiffPixels++
				diff.Set(x, y, color.RGBA{R: 255, A: 255})
				continue
			}
			g := gray(c1)
			diff.Set(x, y, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}

	res.Diff = diff
	res.Ratio = float64(res.DiffPixels) / float64(res.TotalPixels)
	res.Passed = res.DiffPixels <= opts.MaxDiffPixels && res.Ratio <= opts.MaxDiffPixelRatio
	return res
}

// Scale приводит изображение к размеру w×h.
func Scale(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Downsample сводит изображение к сетке grid×grid, оставляя крупную структуру.
func Downsample(src image.Image, grid int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, grid, grid))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func pixelDelta(mode string, threshold float64) func(a, b color.Color) bool {
	threshold = math.Min(math.Max(threshold, 0), 1)

	if mode == ModeYIQ {
		limit := maxYIQDelta * threshold * threshold
		return func(a, b color.Color) bool {
			return yiqDelta(a, b) > limit
		}
	}

	limit := threshold * 255 * math.Sqrt(3)
	return func(a, b color.Color) bool {
		r1, g1, b1 := blendWhite(a)
		r2, g2, b2 := blendWhite(b)
		dr, dg, db := r1-r2, g1-g2, b1-b2
		return math.Sqrt(dr*dr+dg*dg+db*db) > limit
	}
}

// blendWhite возвращает компоненты 0..255, смешанные с белым фоном по альфе.
func blendWhite(c color.Color) (float64, float64, float64) {
	r, g, b, a := c.RGBA()
	alpha := float64(a) / 0xffff
	blend := func(v uint32) float64 {
		// RGBA возвращает premultiplied значения.
		return float64(v)/0xffff*255 + 255*(1-alpha)
	}
	return blend(r), blend(g), blend(b)
}

func yiqDelta(a, b color.Color) float64 {
	r1, g1, b1 := blendWhite(a)
	r2, g2, b2 := blendWhite(b)

	y := rgb2y(r1, g1, b1) - rgb2y(r2, g2, b2)
	i := rgb2i(r1, g1, b1) - rgb2i(r2, g2, b2)
	q := rgb2q(r1, g1, b1) - rgb2q(r2, g2, b2)
	return 0.5053*y*y + 0.299*i*i + 0.1957*q*q
}

func rgb2y(r, g, b float64) float64 { return r*0.29889531 + g*0.58662247 + b*0.11448223 }
func rgb2i(r, g, b float64) float64 { return r*0.59597799 - g*0.27417610 - b*0.32180189 }
func rgb2q(r, g, b float64) float64 { return r*0.21147017 - g*0.52261711 + b*0.31114694 }

func gray(c color.Color) uint8 {
	r, g, b := blendWhite(c)
	y := rgb2y(r, g, b)
	// Осветляем, чтобы отличия были заметнее на фоне.
	return uint8(255 - (255-y)*0.1)
}
