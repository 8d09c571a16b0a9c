package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-facetrack/pkg/web"
)

var watchOpts struct {
	URL   string
	Count int
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print pose messages from a running facetrack server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		out := cmd.OutOrStdout()
		seen := 0
		return web.Watch(ctx, watchOpts.URL, func(p web.PoseMessage) {
			if p.Position == nil {
				fmt.Fprintf(out, "frame %6d  no face yet  (%s)\n", p.Frame, p.Outcome)
			} else {
				fmt.Fprintf(out, "frame %6d  x=%7.3f y=%7.3f z=%7.3f  faces=%d  (%s)\n",
					p.Frame, p.Position.X, p.Position.Y, p.Position.Z, len(p.Faces), p.Outcome)
			}

			seen++
			if watchOpts.Count > 0 && seen >= watchOpts.Count {
				cancel()
			}
		})
	},
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchOpts.URL, "url", "ws://localhost:8080/ws/pose", "Pose websocket URL")
	f.IntVar(&watchOpts.Count, "count", 0, "Stop after this many messages (0 = until Ctrl+C)")

	rootCmd.AddCommand(watchCmd)
}
