package video

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-facetrack/internal/log"
)

// Config holds capture settings.
type Config struct {
	Device    string // Index ("0") or device path ("/dev/video0") or stream URL
	Width     int    // Requested capture width (0 = driver default)
	Height    int    // Requested capture height (0 = driver default)
	Framerate int    // Requested FPS (0 = driver default)
	Quality   int    // JPEG quality for dashboard frames 1-100
}

// DefaultConfig returns capture settings matching the demo's 480x360 video element.
func DefaultConfig() Config {
	return Config{
		Device:    "0",
		Width:     480,
		Height:    360,
		Framerate: 30,
		Quality:   80,
	}
}

// Webcam captures frames from a local camera via OpenCV.
type Webcam struct {
	cfg     Config
	capture *gocv.VideoCapture
	started time.Time
	seq     uint64
	mu      sync.Mutex
}

// OpenWebcam opens the capture device. Failures are classified so callers can tell a busy
// device from a permission problem.
func OpenWebcam(cfg Config) (*Webcam, error) {
	if err := probeDevice(cfg.Device); err != nil {
		return nil, Classify(cfg.Device, err)
	}

	capture, err := gocv.OpenVideoCapture(deviceID(cfg.Device))
	if err != nil {
		return nil, Classify(cfg.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, Classify(cfg.Device, fmt.Errorf("device did not open"))
	}

	if cfg.Width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	if cfg.Framerate > 0 {
		capture.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	}

	log.Info("webcam opened", "device", cfg.Device,
		"width", capture.Get(gocv.VideoCaptureFrameWidth),
		"height", capture.Get(gocv.VideoCaptureFrameHeight))

	return &Webcam{
		cfg:     cfg,
		capture: capture,
		started: time.Now(),
	}, nil
}

// Read captures the next frame.
func (w *Webcam) Read() (Frame, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil {
		return Frame{}, fmt.Errorf("webcam closed")
	}

	img := gocv.NewMat()
	if ok := w.capture.Read(&img); !ok || img.Empty() {
		img.Close()
		return Frame{}, fmt.Errorf("read frame from %s: no data", w.cfg.Device)
	}

	// Live devices often report 0 for the stream position; fall back to wall time.
	ts := time.Duration(w.capture.Get(gocv.VideoCapturePosMsec) * float64(time.Millisecond))
	if ts <= 0 {
		ts = time.Since(w.started)
	}
	w.seq++

	return Frame{
		Image:     img,
		Timestamp: ts,
		Seq:       w.seq,
		Width:     img.Cols(),
		Height:    img.Rows(),
	}, nil
}

// Close releases the capture device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.capture == nil {
		return nil
	}
	err := w.capture.Close()
	w.capture = nil
	return err
}

// deviceID converts "0" to an int index so OpenCV picks the default backend.
func deviceID(device string) interface{} {
	if n, err := strconv.Atoi(device); err == nil {
		return n
	}
	return device
}

// probeDevice opens a V4L2 device node directly. OpenCV only logs why a device
// failed to open; the kernel error tells busy and permission apart.
func probeDevice(device string) error {
	path := device
	if n, err := strconv.Atoi(device); err == nil {
		path = fmt.Sprintf("/dev/video%d", n)
	}
	if !strings.HasPrefix(path, "/dev/") {
		return nil
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			// Not a V4L2 system (macOS, Windows); let OpenCV decide.
			return nil
		}
		return err
	}
	return f.Close()
}
