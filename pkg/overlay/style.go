// Package overlay draws facial landmark connectors onto video frames.
package overlay

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Style is how a region's connectors are drawn.
type Style struct {
	Color     color.RGBA `json:"-"`
	LineWidth int        `json:"line_width"`
}

// Opacity returns the color alpha as a fraction.
func (s Style) Opacity() float64 {
	return float64(s.Color.A) / 255
}

// ParseColor accepts "#rrggbb", "#rrggbbaa" and "rgba(r, g, b, a)" with a in [0,1].
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseRGBA(s[len("rgba(") : len(s)-1])
	}
	return color.RGBA{}, fmt.Errorf("unsupported color %q", s)
}

// MustColor is ParseColor for constants.
func MustColor(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(h string) (color.RGBA, error) {
	if len(h) != 6 && len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("hex color must have 6 or 8 digits, got %q", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("hex color %q: %w", h, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseRGBA(body string) (color.RGBA, error) {
	parts := strings.Split(body, ",")
	if len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("rgba needs 4 components, got %d", len(parts))
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return color.RGBA{}, fmt.Errorf("rgba channel %q out of range", parts[i])
		}
		ch[i] = uint8(n)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil || a < 0 || a > 1 {
		return color.RGBA{}, fmt.Errorf("rgba alpha %q out of range", parts[3])
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(a*255 + 0.5)}, nil
}
