package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-facetrack/pkg/debug"
	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/video"
)

// ReferenceFaceWidth is the normalized face width that maps to depth 0.
// Wider (closer) faces give negative Z, matching the landmarker's convention.
const ReferenceFaceWidth = 0.2

// YuNetDetector uses OpenCV's FaceDetectorYN for face detection
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   Config
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a new YuNet face detector using GoCV's built-in FaceDetectorYN
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	// Input size is updated per frame
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{
		detector: detector,
		config:   cfg,
	}, nil
}

// Topology returns the 5-point YuNet layout.
func (d *YuNetDetector) Topology() landmark.Topology {
	return landmark.YuNet
}

// Detect finds faces in a captured frame.
func (d *YuNetDetector) Detect(frame video.Frame) ([]landmark.Set, error) {
	if !frame.HasImage() {
		return nil, ErrNoImage
	}
	faces, err := d.DetectFaces(frame.Image)
	if err != nil {
		return nil, err
	}
	return Sets(Limit(faces, d.config.MaxFaces)), nil
}

// DetectFaces runs YuNet on img and returns boxes with landmarks.
func (d *YuNetDetector) DetectFaces(img gocv.Mat) ([]Face, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	imgW := float64(img.Cols())
	imgH := float64(img.Rows())

	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	out := gocv.NewMat()
	defer out.Close()

	d.detector.Detect(img, &out)

	faces := make([]Face, 0, out.Rows())
	for r := 0; r < out.Rows(); r++ {
		row := make([]float64, 15)
		for c := range row {
			row[c] = float64(out.GetFloatAt(r, c))
		}
		faces = append(faces, parseYuNetRow(row, imgW, imgH))
	}

	if len(faces) > 0 {
		debug.TrackLog("👁️  YuNet found %d face(s)\n", len(faces))
	}

	return faces, nil
}

// parseYuNetRow converts one FaceDetectorYN output row to a Face.
// Row layout (15 columns):
// 0-3: x, y, w, h (bounding box in pixels)
// 4-13: 5 facial landmarks (x,y pairs)
// 14: face score
func parseYuNetRow(row []float64, imgW, imgH float64) Face {
	box := Detection{
		X:          row[0] / imgW,
		Y:          row[1] / imgH,
		W:          row[2] / imgW,
		H:          row[3] / imgH,
		Confidence: row[14],
	}

	z := DepthFromWidth(box.W)
	points := make(landmark.Set, landmark.YuNet.Landmarks)
	for i := range points {
		points[i] = landmark.Landmark{
			X: clamp(row[4+2*i]/imgW, 0, 1),
			Y: clamp(row[5+2*i]/imgH, 0, 1),
			Z: z,
		}
	}

	return Face{Box: box, Landmarks: points}
}

// DepthFromWidth estimates relative depth from a normalized face width.
// It is 0 at ReferenceFaceWidth and grows more negative as the face approaches.
func DepthFromWidth(w float64) float64 {
	if w <= 0 {
		return 0
	}
	return ReferenceFaceWidth - clamp(w, 0, 1)
}

// Close releases the detector resources
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
