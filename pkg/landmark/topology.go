package landmark

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownTopology is returned by Lookup for unregistered topology names.
var ErrUnknownTopology = errors.New("unknown landmark topology")

// Connection is a line segment between two landmark indices.
type Connection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Topology is the contract with a detector about what each landmark index means.
// It is versioned so a detector upgrade that reshuffles indices is caught when the detector is installed.
type Topology struct {
	Name      string                  `json:"name"`
	Version   string                  `json:"version"`
	Landmarks int                     `json:"landmarks"` // Landmarks per face
	NoseTip   int                     `json:"nose_tip"`  // Index of the nose tip
	Regions   map[string][]Connection `json:"regions"`   // Named connector lists for drawing
}

// Region returns the connectors for a named region.
func (t Topology) Region(name string) ([]Connection, bool) {
	c, ok := t.Regions[name]
	return c, ok
}

// RegionNames returns region names in sorted order.
func (t Topology) RegionNames() []string {
	names := make([]string, 0, len(t.Regions))
	for name := range t.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every connector and the nose tip index fall inside the landmark range.
// A topology reusing a registered name must also carry the registered version and landmark count.
func (t Topology) Validate() error {
	if t.Version == "" {
		return fmt.Errorf("topology %s: version is required", t.Name)
	}
	if reg, ok := registry[t.Name]; ok {
		if reg.Version != t.Version {
			return fmt.Errorf("topology %s: version %s does not match registered %s", t.Name, t.Version, reg.Version)
		}
		if reg.Landmarks != t.Landmarks {
			return fmt.Errorf("topology %s: %d landmarks, registered layout has %d", t.Name, t.Landmarks, reg.Landmarks)
		}
	}
	if t.Landmarks <= 0 {
		return fmt.Errorf("topology %s: landmark count must be positive", t.Name)
	}
	if t.NoseTip < 0 || t.NoseTip >= t.Landmarks {
		return fmt.Errorf("topology %s: nose tip %d out of range", t.Name, t.NoseTip)
	}
	for name, conns := range t.Regions {
		for _, c := range conns {
			if c.Start < 0 || c.Start >= t.Landmarks || c.End < 0 || c.End >= t.Landmarks {
				return fmt.Errorf("topology %s: region %s connection %d-%d out of range",
					t.Name, name, c.Start, c.End)
			}
		}
	}
	return nil
}

// Region names shared by the built-in topologies.
const (
	RegionFaceOval     = "face_oval"
	RegionLeftEyebrow  = "left_eyebrow"
	RegionRightEyebrow = "right_eyebrow"
	RegionLeftEye      = "left_eye"
	RegionRightEye     = "right_eye"
	RegionLips         = "lips"
	RegionEyes         = "eyes"
	RegionMouth        = "mouth"
)

var registry = map[string]Topology{
	MediaPipeFaceMesh.Name: MediaPipeFaceMesh,
	YuNet.Name:             YuNet,
}

// Lookup returns a built-in topology by name.
func Lookup(name string) (Topology, error) {
	t, ok := registry[name]
	if !ok {
		return Topology{}, fmt.Errorf("%w: %q", ErrUnknownTopology, name)
	}
	return t, nil
}

// Names returns the registered topology names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// chain builds connections from consecutive pairs in a flat index list.
func chain(pairs ...int) []Connection {
	conns := make([]Connection, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		conns = append(conns, Connection{Start: pairs[i], End: pairs[i+1]})
	}
	return conns
}
