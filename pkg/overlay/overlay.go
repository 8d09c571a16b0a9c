package overlay

import (
	"image"

	"github.com/teslashibe/go-facetrack/pkg/landmark"
)

// Segment is one line in pixel coordinates.
type Segment struct {
	A, B image.Point
}

// Surface is anything connectors can be drawn onto.
type Surface interface {
	Size() (width, height int)
	DrawLines(segments []Segment, style Style)
}

// Region pairs a topology region with its style.
type Region struct {
	Name  string `json:"name"`
	Style Style  `json:"style"`
}

// DefaultRegions returns the regions drawn for a topology: a dark translucent outline,
// cyan eyebrows and pink lips. Eyes are left undrawn.
func DefaultRegions(topo landmark.Topology) []Region {
	if topo.Name == landmark.YuNet.Name {
		return []Region{
			{Name: landmark.RegionEyes, Style: Style{Color: MustColor("rgba(48, 227, 255, .6)"), LineWidth: 2}},
			{Name: landmark.RegionMouth, Style: Style{Color: MustColor("rgba(255, 128, 128, .6)"), LineWidth: 2}},
		}
	}
	return []Region{
		{Name: landmark.RegionFaceOval, Style: Style{Color: MustColor("#00000070"), LineWidth: 1}},
		{Name: landmark.RegionRightEyebrow, Style: Style{Color: MustColor("rgba(48, 227, 255, .2)"), LineWidth: 1}},
		{Name: landmark.RegionLeftEyebrow, Style: Style{Color: MustColor("rgba(46, 227, 255, .2)"), LineWidth: 1}},
		{Name: landmark.RegionLips, Style: Style{Color: MustColor("rgba(255, 128, 128, .2)"), LineWidth: 1}},
	}
}

// Connectors converts a region's connections for one face into pixel segments.
// Connections that reference missing landmarks are skipped.
func Connectors(set landmark.Set, conns []landmark.Connection, width, height int) []Segment {
	segs := make([]Segment, 0, len(conns))
	for _, c := range conns {
		if c.Start < 0 || c.Start >= len(set) || c.End < 0 || c.End >= len(set) {
			continue
		}
		segs = append(segs, Segment{
			A: toPixel(set[c.Start], width, height),
			B: toPixel(set[c.End], width, height),
		})
	}
	return segs
}

// Painter draws configured regions for every face.
type Painter struct {
	Topology landmark.Topology
	Regions  []Region
}

// NewPainter creates a painter with the default regions for topo.
func NewPainter(topo landmark.Topology) *Painter {
	return &Painter{Topology: topo, Regions: DefaultRegions(topo)}
}

// DrawConnectors draws one region of one face.
func (p *Painter) DrawConnectors(s Surface, set landmark.Set, region string, style Style) {
	conns, ok := p.Topology.Region(region)
	if !ok {
		return
	}
	w, h := s.Size()
	segs := Connectors(set, conns, w, h)
	if len(segs) == 0 {
		return
	}
	s.DrawLines(segs, style)
}

// Paint draws every configured region for every face.
func (p *Painter) Paint(s Surface, faces []landmark.Set) {
	for _, set := range faces {
		for _, r := range p.Regions {
			p.DrawConnectors(s, set, r.Name, r.Style)
		}
	}
}

func toPixel(l landmark.Landmark, width, height int) image.Point {
	return image.Pt(int(l.X*float64(width)+0.5), int(l.Y*float64(height)+0.5))
}
