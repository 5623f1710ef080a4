package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"
)

// Camera describes an enumerated video capture device.
type Camera struct {
	Device string `json:"device"`
	Label  string `json:"label"`
}

// rear-facing label fragments, matched case-insensitively.
var rearLabelHints = []string{"back", "rear", "arrière", "arriere"}

// enumerateCameras lists /dev/video* devices with their kernel-reported
// labels from sysfs.
func enumerateCameras() ([]Camera, error) {
	matches, err := filepath.Glob("/dev/video*")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	cameras := make([]Camera, 0, len(matches))
	for _, device := range matches {
		cameras = append(cameras, Camera{
			Device: device,
			Label:  cameraLabel(device),
		})
	}
	return cameras, nil
}

func cameraLabel(device string) string {
	name := filepath.Base(device)
	data, err := os.ReadFile(filepath.Join("/sys/class/video4linux", name, "name"))
	if err != nil {
		return name
	}
	return strings.TrimSpace(string(data))
}

// selectCamera prefers a rear-facing camera by label, else the first one.
func selectCamera(cameras []Camera) (Camera, bool) {
	if len(cameras) == 0 {
		return Camera{}, false
	}
	for _, cam := range cameras {
		label := strings.ToLower(cam.Label)
		for _, hint := range rearLabelHints {
			if strings.Contains(label, hint) {
				return cam, true
			}
		}
	}
	return cameras[0], true
}

// probeCamera checks device readability before the decode loop starts, so
// permission failures are distinguished from stream failures.
func probeCamera(device string) error {
	if err := unix.Access(device, unix.R_OK); err != nil {
		return err
	}
	return nil
}
