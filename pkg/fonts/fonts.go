// Package fonts provides the monospace face used to measure and draw node
// content outside the terminal.
//
// The face is Go Mono, embedded in golang.org/x/image, so measurements match
// between the SVG and PNG outputs without any system font lookup.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// FontFamily is the CSS font-family used in SVG output.
const FontFamily = `'Go Mono', 'DejaVu Sans Mono', monospace`

// DefaultSize is the default font size in points at 72 DPI, i.e. pixels.
const DefaultSize = 12.0

// LineSpacing is the baseline distance of multi-line text as a multiple of
// the font size.
const LineSpacing = 1.25

// Parsed once on first access.
var (
	monoFont     *truetype.Font
	monoFontErr  error
	monoFontOnce sync.Once
)

func parsedMono() (*truetype.Font, error) {
	monoFontOnce.Do(func() {
		monoFont, monoFontErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, monoFontErr
}

// Face measures text at a fixed size.
type Face struct {
	face font.Face
	size float64
}

// Mono returns a Go Mono face of the given size. A non-positive size selects
// [DefaultSize].
func Mono(size float64) (*Face, error) {
	if size <= 0 {
		size = DefaultSize
	}
	f, err := parsedMono()
	if err != nil {
		return nil, fmt.Errorf("parse go mono: %w", err)
	}
	return &Face{
		face: truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone}),
		size: size,
	}, nil
}

// Size returns the point size.
func (f *Face) Size() float64 { return f.size }

// FontFace returns the underlying face for drawing.
func (f *Face) FontFace() font.Face { return f.face }

// TextWidth returns the advance width of s.
func (f *Face) TextWidth(s string) float64 {
	return float64(font.MeasureString(f.face, s)) / 64
}

// LineHeight returns the distance between baselines.
func (f *Face) LineHeight() float64 {
	return float64(f.face.Metrics().Height) / 64
}

// Ascent returns the distance from the top of a line to its baseline.
func (f *Face) Ascent() float64 {
	return float64(f.face.Metrics().Ascent) / 64
}

// Measure returns the box needed to show lines with pad units of padding on
// every side. Lines are LineSpacing times the face size apart.
func (f *Face) Measure(lines []string, pad float64) (width, height float64) {
	for _, l := range lines {
		width = max(width, f.TextWidth(l))
	}
	height = float64(len(lines)) * f.size * LineSpacing
	return width + 2*pad, height + 2*pad
}
