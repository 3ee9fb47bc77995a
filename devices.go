package soundbox

import (
	"github.com/gordonklaus/portaudio"
)

// CaptureDevice describes one enumerable input device.
type CaptureDevice struct {
	Name      string
	IsDefault bool
}

// inputDevices returns every device with input channels, in enumeration
// order. Capture.Init addresses devices by index into this list.
func inputDevices() ([]*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	var in []*portaudio.DeviceInfo
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 {
			in = append(in, dev)
		}
	}
	return in, nil
}

// ListCaptureDevices enumerates the capture devices PortAudio can see.
// The index of an entry in the returned slice is the deviceIndex accepted
// by Capture.Init.
func ListCaptureDevices() ([]CaptureDevice, error) {
	if err := paAcquire(); err != nil {
		return nil, err
	}
	defer paRelease()

	in, err := inputDevices()
	if err != nil {
		return nil, err
	}
	def, _ := portaudio.DefaultInputDevice()

	out := make([]CaptureDevice, 0, len(in))
	for _, dev := range in {
		out = append(out, CaptureDevice{
			Name:      dev.Name,
			IsDefault: def != nil && dev == def,
		})
	}
	return out, nil
}
