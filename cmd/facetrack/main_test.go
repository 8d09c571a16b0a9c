package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-facetrack/internal/config"
)

func testEnv() config.Env {
	return config.Env{
		Port:          "9000",
		CameraDevice:  "/dev/video2",
		Detector:      "remote",
		YuNetModel:    "m.onnx",
		LandmarkerURL: "http://sidecar/v1/face_landmarks",
		LogLevel:      "info",
		StaticDir:     "./web",
	}
}

func parseRun(t *testing.T, args ...string) (*cobra.Command, runOptions) {
	t.Helper()
	var opts runOptions
	cmd := &cobra.Command{Use: "run"}
	addRunFlags(cmd, &opts)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error = %v", args, err)
	}
	return cmd, opts
}

func TestBuildConfig(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cmd *cobra.Command, opts runOptions)
	}{
		{
			name: "env without flags",
			check: func(t *testing.T, cmd *cobra.Command, opts runOptions) {
				cfg, err := buildConfig(cmd, opts, testEnv())
				if err != nil {
					t.Fatal(err)
				}
				if cfg.Port != "9000" || cfg.Capture.Device != "/dev/video2" || cfg.Detection.Backend != "remote" {
					t.Errorf("env not applied: %+v", cfg)
				}
				if cfg.Tracking.SmoothingFactor != 0.7 {
					t.Errorf("SmoothingFactor = %v", cfg.Tracking.SmoothingFactor)
				}
			},
		},
		{
			name: "flags override env",
			args: []string{"--port", "7000", "--detector", "yunet", "--smoothing", "0.5", "--fps", "20", "--aspect-source", "video"},
			check: func(t *testing.T, cmd *cobra.Command, opts runOptions) {
				cfg, err := buildConfig(cmd, opts, testEnv())
				if err != nil {
					t.Fatal(err)
				}
				if cfg.Port != "7000" || cfg.Detection.Backend != "yunet" {
					t.Errorf("flags not applied: port=%s backend=%s", cfg.Port, cfg.Detection.Backend)
				}
				if cfg.Tracking.SmoothingFactor != 0.5 {
					t.Errorf("SmoothingFactor = %v", cfg.Tracking.SmoothingFactor)
				}
				if cfg.Tracking.FrameInterval != 50*time.Millisecond {
					t.Errorf("FrameInterval = %v", cfg.Tracking.FrameInterval)
				}
				if cfg.Tracking.AspectSource != "video" {
					t.Errorf("AspectSource = %q", cfg.Tracking.AspectSource)
				}
			},
		},
		{
			name: "log level",
			args: []string{"--topology", "yunet"},
			check: func(t *testing.T, cmd *cobra.Command, opts runOptions) {
				env := testEnv()
				env.LogLevel = "warn"
				cfg, err := buildConfig(cmd, opts, env)
				if err != nil {
					t.Fatal(err)
				}
				if cfg.LogLevel != "warn" {
					t.Errorf("LogLevel = %q, want warn from env", cfg.LogLevel)
				}
				if cfg.Detection.Topology != "yunet" {
					t.Errorf("Topology = %q, want yunet", cfg.Detection.Topology)
				}

				opts.Debug = true
				cfg, err = buildConfig(cmd, opts, env)
				if err != nil {
					t.Fatal(err)
				}
				if cfg.LogLevel != "debug" {
					t.Errorf("LogLevel = %q, want debug with --debug", cfg.LogLevel)
				}
			},
		},
		{
			name: "presets",
			args: []string{"--preset", "smooth", "--camera", "wide"},
			check: func(t *testing.T, cmd *cobra.Command, opts runOptions) {
				cfg, err := buildConfig(cmd, opts, testEnv())
				if err != nil {
					t.Fatal(err)
				}
				if cfg.Tracking.SmoothingFactor != 0.85 {
					t.Errorf("SmoothingFactor = %v, want 0.85", cfg.Tracking.SmoothingFactor)
				}
				if cfg.Scene.FOV != 75 {
					t.Errorf("FOV = %v, want 75", cfg.Scene.FOV)
				}
			},
		},
		{
			name: "unknown presets",
			args: []string{"--preset", "jittery"},
			check: func(t *testing.T, cmd *cobra.Command, opts runOptions) {
				if _, err := buildConfig(cmd, opts, testEnv()); err == nil {
					t.Error("expected error for unknown tracking preset")
				}
				opts.TrackingPreset = ""
				opts.CameraPreset = "fisheye"
				if _, err := buildConfig(cmd, opts, testEnv()); err == nil {
					t.Error("expected error for unknown camera preset")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, opts := parseRun(t, tt.args...)
			tt.check(t, cmd, opts)
		})
	}
}

func TestProjectCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"project", "--x", "0.75", "--y", "0.5", "--z", "-0.2", "--fov", "45", "--aspect", "1.5"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "scene position: (-3.107, 0.000, 2.000)") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
