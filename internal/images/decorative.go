package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Corporate gradient endpoints, matching the document renderers.
var (
	bannerStart = color.RGBA{R: 0x1e, G: 0x3a, B: 0x5f, A: 0xff}
	bannerMid   = color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}
	bannerEnd   = color.RGBA{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff}
)

var bannerFace = basicfont.Face7x13

// decorativeBanner draws a gradient banner with faint circles and the
// topic as caption. Output is deterministic for a given title and area.
func decorativeBanner(title, area string) []byte {
	const width, height = 800, 200

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		c := gradientAt(float64(x) / float64(width-1))
		for y := 0; y < height; y++ {
			img.SetRGBA(x, y, c)
		}
	}

	// Faint circle outlines spaced along the banner.
	for i := 0; i < 5; i++ {
		cx := width / 10 * (1 + i*2)
		drawCircle(img, cx, height/2, height*15/100, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x26})
	}

	if title != "" {
		drawBannerText(img, 40, height/2-6, truncateBannerText(title, 60))
	}
	if kw := keywordsForArea(area); kw != "" {
		drawBannerText(img, 40, height/2+20, truncateBannerText(kw, 80))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// The encoder only fails on writer errors, which a Buffer never has.
		return nil
	}
	return buf.Bytes()
}

// gradientAt interpolates the three-stop corporate gradient at t in [0,1].
func gradientAt(t float64) color.RGBA {
	if t < 0.5 {
		return lerpRGBA(bannerStart, bannerMid, t*2)
	}
	return lerpRGBA(bannerMid, bannerEnd, (t-0.5)*2)
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 0xff,
	}
}

// drawCircle plots a one-pixel outline, blended over the gradient.
func drawCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			d := x*x + y*y
			if d >= (r-1)*(r-1) && d <= r*r {
				blendPixel(img, cx+x, cy+y, c)
			}
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	base := img.RGBAAt(x, y)
	a := float64(c.A) / 255
	img.SetRGBA(x, y, color.RGBA{
		R: uint8(float64(base.R)*(1-a) + float64(c.R)*a),
		G: uint8(float64(base.G)*(1-a) + float64(c.G)*a),
		B: uint8(float64(base.B)*(1-a) + float64(c.B)*a),
		A: 0xff,
	})
}

func drawBannerText(img *image.RGBA, x, y int, s string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		Face: bannerFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func truncateBannerText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "."
}
