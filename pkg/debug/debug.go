// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Tracking controls whether per-frame tracking logs are shown (detections, smoothing, pose).
// Use --debug-tracking to enable these very verbose logs
var Tracking bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// TrackLog prints a message only if tracking debug mode is enabled
func TrackLog(format string, args ...interface{}) {
	if Tracking {
		fmt.Printf(format, args...)
	}
}

// TrackLogEvery prints a tracking message on every nth frame only, so a
// 30 FPS loop stays readable.
func TrackLogEvery(n, seq uint64, format string, args ...interface{}) {
	if Tracking && n > 0 && seq%n == 0 {
		fmt.Printf(format, args...)
	}
}
