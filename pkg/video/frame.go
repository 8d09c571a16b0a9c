// Package video provides webcam capture for the tracking pipeline.
package video

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Frame is one captured video frame.
type Frame struct {
	Image     gocv.Mat
	Timestamp time.Duration // Position in the stream; unchanged timestamp means unchanged frame
	Seq       uint64        // Monotonic capture counter
	Width     int
	Height    int
}

// Aspect returns the frame aspect ratio, or 0 if the size is unknown.
func (f Frame) Aspect() float64 {
	if f.Height == 0 {
		return 0
	}
	return float64(f.Width) / float64(f.Height)
}

// Close releases the frame's image memory.
func (f *Frame) Close() error {
	if f.Image.Ptr() == nil {
		return nil
	}
	return f.Image.Close()
}

// Source produces frames for the pipeline.
type Source interface {
	// Read captures the next frame. The caller owns the returned frame and must Close it.
	Read() (Frame, error)

	// Close releases the device.
	Close() error
}

// EncodeJPEG encodes a frame for streaming to the dashboard.
func EncodeJPEG(img gocv.Mat, quality int) ([]byte, error) {
	if img.Empty() {
		return nil, fmt.Errorf("empty frame")
	}
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// IsBlank reports whether a frame is near-black, as webcams produce while warming up.
func IsBlank(img gocv.Mat) bool {
	if img.Empty() {
		return true
	}
	mean := img.Mean()
	return mean.Val1 < 8 && mean.Val2 < 8 && mean.Val3 < 8
}

// HasImage reports whether the frame carries pixel data.
func (f Frame) HasImage() bool {
	return f.Image.Ptr() != nil && !f.Image.Empty()
}
