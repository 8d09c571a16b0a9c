package tracking

import (
	"errors"
	"sync"
	"time"

	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/video"
)

// scriptedDetector returns one scripted result per Detect call, then nothing.
type scriptedDetector struct {
	topo   landmark.Topology
	script [][]landmark.Set
	errAt  map[int]error
	calls  int
}

func (d *scriptedDetector) Detect(video.Frame) ([]landmark.Set, error) {
	i := d.calls
	d.calls++
	if err, ok := d.errAt[i]; ok {
		return nil, err
	}
	if i >= len(d.script) {
		return nil, nil
	}
	return d.script[i], nil
}

func (d *scriptedDetector) Topology() landmark.Topology { return d.topo }
func (d *scriptedDetector) Close() error                { return nil }

// yunetFace builds a 5-point face with the nose tip at (x, y, z).
func yunetFace(x, y, z float64) landmark.Set {
	set := make(landmark.Set, landmark.YuNet.Landmarks)
	for i := range set {
		set[i] = landmark.Landmark{X: 0.5, Y: 0.5}
	}
	set[landmark.YuNetNoseTip] = landmark.Landmark{X: x, Y: y, Z: z}
	return set
}

type recordingRenderer struct {
	mu     sync.Mutex
	scenes []Scene
}

func (r *recordingRenderer) Render(s Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenes = append(r.scenes, s)
	return nil
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scenes)
}

// fakeSource yields frames with an advancing timestamp and no image.
type fakeSource struct {
	mu      sync.Mutex
	seq     uint64
	failing bool
	closed  bool
}

func (s *fakeSource) Read() (video.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return video.Frame{}, errors.New("read failed")
	}
	s.seq++
	return video.Frame{
		Seq:       s.seq,
		Timestamp: time.Duration(s.seq) * 33 * time.Millisecond,
		Width:     480,
		Height:    360,
	}, nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
