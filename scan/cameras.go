package scan

// KindVideoInput is the device kind of cameras.
const KindVideoInput = "videoinput"

// Device is an enumerated media device.
type Device struct {
	ID    string
	Kind  string
	Label string
}

// Cameras keeps the video inputs that expose a device ID. Enumeration
// before permission is granted reports devices without one.
func Cameras(devices []Device) []Device {
	var out []Device
	for _, d := range devices {
		if d.ID != "" && d.Kind == KindVideoInput {
			out = append(out, d)
		}
	}
	return out
}

// CameraOption is one entry of the camera picker.
type CameraOption struct {
	Value string
	Label string
}

// CameraOptions lists the front and back preferences followed by each
// camera.
func CameraOptions(cameras []Device) []CameraOption {
	opts := []CameraOption{
		{Value: CameraUser, Label: "Front camera"},
		{Value: CameraEnvironment, Label: "Back camera"},
	}
	for _, c := range cameras {
		opts = append(opts, CameraOption{Value: c.ID, Label: c.Label})
	}
	return opts
}
