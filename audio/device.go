package audio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

var ErrNoDevice = errors.New("no output device")

// Device describes an output device.
type Device struct {
	Index             int
	Name              string
	HostAPI           string
	MaxOutputChannels int
	DefaultSampleRate float64
}

func (d Device) String() string {
	return d.HostAPI + ": " + d.Name
}

// preferredHostAPIs are the low latency host APIs. When any device uses one
// of them, devices on other APIs are hidden.
var preferredHostAPIs = []string{"ASIO", "WASAPI", "Core Audio"}

// ListDevices returns the usable output devices. portaudio must be
// initialized.
func ListDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, deviceFromInfo(info))
	}
	return FilterDevices(devices), nil
}

// FilterDevices drops devices without outputs and, if a preferred host API
// is present, devices on any other host API.
func FilterDevices(all []Device) []Device {
	var outputs []Device
	var preferred bool
	for _, d := range all {
		if d.MaxOutputChannels <= 0 {
			continue
		}
		outputs = append(outputs, d)
		preferred = preferred || isPreferred(d.HostAPI)
	}
	if !preferred {
		return outputs
	}
	var filtered []Device
	for _, d := range outputs {
		if isPreferred(d.HostAPI) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func isPreferred(hostAPI string) bool {
	for _, name := range preferredHostAPIs {
		if strings.Contains(hostAPI, name) {
			return true
		}
	}
	return false
}

func deviceFromInfo(info *portaudio.DeviceInfo) Device {
	d := Device{
		Index:             info.Index,
		Name:              info.Name,
		MaxOutputChannels: info.MaxOutputChannels,
		DefaultSampleRate: info.DefaultSampleRate,
	}
	if info.HostApi != nil {
		d.HostAPI = info.HostApi.Name
	}
	return d
}

// lookupDevice returns the portaudio device with the given index, or the
// default output device for a negative index.
func lookupDevice(index int) (*portaudio.DeviceInfo, error) {
	if index < 0 {
		info, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
		}
		return info, nil
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	for _, info := range infos {
		if info.Index == index && info.MaxOutputChannels > 0 {
			return info, nil
		}
	}
	return nil, fmt.Errorf("%w with index %d", ErrNoDevice, index)
}
