package overlay

import (
	"gocv.io/x/gocv"
)

// MatSurface draws onto an OpenCV image, blending each call by the style's alpha.
type MatSurface struct {
	img *gocv.Mat
}

// NewMatSurface wraps img. The surface does not take ownership.
func NewMatSurface(img *gocv.Mat) *MatSurface {
	return &MatSurface{img: img}
}

// Size returns the image dimensions.
func (m *MatSurface) Size() (int, int) {
	return m.img.Cols(), m.img.Rows()
}

// DrawLines draws segments in one pass and alpha-blends them onto the image.
func (m *MatSurface) DrawLines(segments []Segment, style Style) {
	if m.img.Empty() || len(segments) == 0 {
		return
	}

	width := style.LineWidth
	if width < 1 {
		width = 1
	}
	// OpenCV images are BGR
	c := style.Color
	bgr := c
	bgr.R, bgr.B = c.B, c.R
	bgr.A = 255

	alpha := style.Opacity()
	if alpha >= 1 {
		for _, s := range segments {
			gocv.Line(m.img, s.A, s.B, bgr, width)
		}
		return
	}
	if alpha <= 0 {
		return
	}

	layer := m.img.Clone()
	defer layer.Close()
	for _, s := range segments {
		gocv.Line(&layer, s.A, s.B, bgr, width)
	}
	gocv.AddWeighted(layer, alpha, *m.img, 1-alpha, 0, m.img)
}
