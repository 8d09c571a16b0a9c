package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-facetrack/pkg/landmark"
	"github.com/teslashibe/go-facetrack/pkg/projection"
)

var projectOpts struct {
	X, Y, Z float64
	FOV     float64
	Aspect  float64
	Scale   float64
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project one normalized landmark into scene space",
	Example: `  facetrack project --x 0.75 --y 0.5 --z -0.2 --fov 45 --aspect 1.5
  # scene position: (-3.107, 0.000, 2.000)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cam := projection.CameraParams{FOV: projectOpts.FOV, Aspect: projectOpts.Aspect}
		if err := cam.Validate(); err != nil {
			return err
		}
		if projectOpts.Scale <= 0 {
			return fmt.Errorf("scale must be positive")
		}

		l := landmark.Landmark{X: projectOpts.X, Y: projectOpts.Y, Z: projectOpts.Z}
		p := projection.Project(l, cam, projectOpts.Scale)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "landmark:       (%.3f, %.3f, %.3f)\n", l.X, l.Y, l.Z)
		fmt.Fprintf(out, "camera:         fov=%.1f° aspect=%.3f visible=±%.3f x ±%.3f\n",
			cam.FOV, cam.Aspect, cam.HalfWidth()*projectOpts.Scale, cam.HalfHeight()*projectOpts.Scale)
		fmt.Fprintf(out, "scene position: (%.3f, %.3f, %.3f)\n", p.X, p.Y, p.Z)
		return nil
	},
}

func init() {
	f := projectCmd.Flags()
	f.Float64Var(&projectOpts.X, "x", 0.5, "Normalized landmark x (0 = left edge)")
	f.Float64Var(&projectOpts.Y, "y", 0.5, "Normalized landmark y (0 = top edge)")
	f.Float64Var(&projectOpts.Z, "z", 0, "Relative landmark depth (negative = toward camera)")
	f.Float64Var(&projectOpts.FOV, "fov", 45, "Vertical field of view in degrees")
	f.Float64Var(&projectOpts.Aspect, "aspect", 480.0/360.0, "Aspect ratio (width / height)")
	f.Float64Var(&projectOpts.Scale, "scale", projection.DefaultScale, "Normalized to world unit scale")

	rootCmd.AddCommand(projectCmd)
}
