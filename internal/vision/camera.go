// Package vision captures frames from the local camera and turns them into
// text descriptions via the vision model.
package vision

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// Camera grabs single JPEG frames with ffmpeg. One capture at a time; most
// camera drivers refuse concurrent opens of the same device.
type Camera struct {
	mu     sync.Mutex
	device int
}

func NewCamera(device int) *Camera {
	return &Camera{device: device}
}

// Capture opens the device, grabs one frame scaled to 512px on the long edge
// and returns it as JPEG bytes.
func (c *Camera) Capture(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	args, err := captureArgs(c.device)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, goerr.Wrap(err, "camera capture failed",
			goerr.V("device", c.device),
			goerr.V("stderr", tail(stderr.String(), 512)))
	}
	if stdout.Len() == 0 {
		return nil, goerr.New("camera produced no frame", goerr.V("device", c.device))
	}
	return stdout.Bytes(), nil
}

func captureArgs(device int) ([]string, error) {
	common := []string{
		"-frames:v", "1",
		"-vf", "scale='min(512,iw)':-2",
		"-f", "mjpeg",
		"-q:v", "4",
		"pipe:1",
	}

	switch runtime.GOOS {
	case "linux":
		return append([]string{
			"-hide_banner", "-loglevel", "error",
			"-f", "v4l2",
			"-i", fmt.Sprintf("/dev/video%d", device),
		}, common...), nil
	case "darwin":
		return append([]string{
			"-hide_banner", "-loglevel", "error",
			"-f", "avfoundation",
			"-framerate", "30",
			"-i", fmt.Sprintf("%d", device),
		}, common...), nil
	case "windows":
		return append([]string{
			"-hide_banner", "-loglevel", "error",
			"-f", "dshow",
			"-i", "video=Integrated Camera",
		}, common...), nil
	default:
		return nil, goerr.New("camera capture not supported on this platform",
			goerr.V("goos", runtime.GOOS))
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
