package charts

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Corporate palette, same hues the document renderers use.
var (
	colorPrimary   = color.RGBA{R: 0x1e, G: 0x3a, B: 0x5f, A: 0xff}
	colorSecondary = color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}
	colorNeutral   = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	colorWhite     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

var palette = []color.RGBA{
	{R: 0x1e, G: 0x3a, B: 0x5f, A: 0xff},
	{R: 0x25, G: 0x63, B: 0xeb, A: 0xff},
	{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff},
	{R: 0x05, G: 0x96, B: 0x69, A: 0xff},
	{R: 0xd9, G: 0x77, B: 0x06, A: 0xff},
	{R: 0xdc, G: 0x26, B: 0x26, A: 0xff},
	{R: 0x08, G: 0x91, B: 0xb2, A: 0xff},
	{R: 0x4f, G: 0x46, B: 0xe5, A: 0xff},
	{R: 0xea, G: 0x58, B: 0x0c, A: 0xff},
	{R: 0x16, G: 0xa3, B: 0x4a, A: 0xff},
}

var chartFace = basicfont.Face7x13

// drawBars renders a vertical bar chart with the maximum bar highlighted.
func drawBars(title string, labels []string, values []float64) ([]byte, error) {
	if len(values) == 0 {
		return nil, errors.New("no values")
	}

	const width, height = 800, 450
	const marginTop, marginBottom, marginLeft, marginRight = 60, 60, 50, 20

	img := newCanvas(width, height)

	minVal, maxVal := 0.0, 0.0
	maxIdx := 0
	for i, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		if v > values[maxIdx] {
			maxIdx = i
		}
	}
	span := maxVal - minVal
	if span == 0 {
		span = 1
	}

	plotW := width - marginLeft - marginRight
	plotH := height - marginTop - marginBottom
	zeroY := marginTop + int(float64(plotH)*maxVal/span)

	slot := plotW / len(values)
	barW := slot * 6 / 10
	if barW < 2 {
		barW = 2
	}

	for i, v := range values {
		barColor := colorSecondary
		if i == maxIdx {
			barColor = colorPrimary
		}
		x0 := marginLeft + i*slot + (slot-barW)/2
		barH := int(float64(plotH) * math.Abs(v) / span)
		var y0, y1 int
		if v >= 0 {
			y0, y1 = zeroY-barH, zeroY
		} else {
			y0, y1 = zeroY, zeroY+barH
		}
		fillRect(img, x0, y0, x0+barW, y1, barColor)

		valueLabel := formatValue(v)
		vx := x0 + (barW-textWidth(valueLabel))/2
		vy := y0 - 4
		if v < 0 {
			vy = y1 + chartFace.Height
		}
		drawText(img, vx, vy, colorPrimary, valueLabel)

		axisLabel := truncateLabel(labels[i], slot/chartFace.Advance)
		drawText(img, marginLeft+i*slot+(slot-textWidth(axisLabel))/2, height-marginBottom+18, colorNeutral, axisLabel)
	}

	// Zero baseline.
	fillRect(img, marginLeft, zeroY, width-marginRight, zeroY+1, colorNeutral)

	drawText(img, (width-textWidth(title))/2, 30, colorPrimary, title)

	return encodePNG(img)
}

// drawDonut renders a donut chart with a legend column on the right.
func drawDonut(title string, labels []string, values []float64) ([]byte, error) {
	total := 0.0
	for _, v := range values {
		total += v
	}
	if total <= 0 {
		return nil, errors.New("non-positive total")
	}

	const width, height = 640, 420
	const cx, cy = 210, 230
	const outer, inner = 150.0, 82.0

	img := newCanvas(width, height)

	// Cumulative fractions, clockwise from the top.
	bounds := make([]float64, len(values)+1)
	for i, v := range values {
		bounds[i+1] = bounds[i] + v/total
	}

	for y := cy - int(outer) - 1; y <= cy+int(outer)+1; y++ {
		for x := cx - int(outer) - 1; x <= cx+int(outer)+1; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			r := math.Hypot(dx, dy)
			if r < inner || r > outer {
				continue
			}
			frac := math.Atan2(dx, -dy) / (2 * math.Pi)
			if frac < 0 {
				frac++
			}
			for i := range values {
				if frac >= bounds[i] && frac < bounds[i+1] {
					img.SetRGBA(x, y, palette[i%len(palette)])
					break
				}
			}
		}
	}

	// Percentage labels at segment midpoints.
	for i, v := range values {
		frac := v / total
		if frac < 0.04 {
			continue
		}
		mid := (bounds[i] + bounds[i+1]) / 2 * 2 * math.Pi
		lx := cx + int(0.76*outer*math.Sin(mid))
		ly := cy - int(0.76*outer*math.Cos(mid))
		label := formatValue(frac*100) + "%"
		drawText(img, lx-textWidth(label)/2, ly+chartFace.Height/2-2, colorWhite, label)
	}

	// Legend.
	legendX := 400
	legendY := 90
	for i, label := range labels {
		fillRect(img, legendX, legendY-10, legendX+12, legendY+2, palette[i%len(palette)])
		entry := truncateLabel(label, 28) + "  " + formatValue(values[i])
		drawText(img, legendX+20, legendY, colorPrimary, entry)
		legendY += 24
	}

	drawText(img, (width-textWidth(title))/2, 34, colorPrimary, title)

	return encodePNG(img)
}

func newCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)
	return img
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	draw.Draw(img, image.Rect(x0, y0, x1, y1), image.NewUniform(c), image.Point{}, draw.Src)
}

func drawText(img *image.RGBA, x, y int, c color.Color, s string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: chartFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(chartFace, s).Ceil()
}

func truncateLabel(s string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "."
}

func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		s = s[:len(s)-2]
	}
	return s
}

func encodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
