// facetrack - webcam face tracking that drives an object in a 3D scene.
// The nose tip of the tracked face is smoothed, projected into the scene camera's
// space and streamed to browsers over websockets.
package main

func main() {
	Execute()
}
