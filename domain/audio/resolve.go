package audio

import (
	"fmt"
	"strings"
)

// Backend enumerates the host audio endpoints.
type Backend interface {
	// DefaultOutputName returns the display name of the default playback
	// device.
	DefaultOutputName() (string, error)
	// Candidates returns the devices that can be opened for capture.
	Candidates() ([]Device, error)
}

var loopbackMarkers = []string{"monitor", "mix"}

// ResolveLoopback picks the capture device mirroring speaker. An exact name
// match wins; otherwise a name containing speaker and a loopback marker;
// otherwise the last name containing speaker.
func ResolveLoopback(speaker string, candidates []Device) (Device, bool) {
	want := normalizeName(speaker)
	if want == "" {
		return nil, false
	}
	for _, d := range candidates {
		if normalizeName(d.Name()) == want {
			return d, true
		}
	}
	var fallback Device
	for _, d := range candidates {
		name := normalizeName(d.Name())
		if !strings.Contains(name, want) {
			continue
		}
		for _, m := range loopbackMarkers {
			if strings.Contains(name, m) {
				return d, true
			}
		}
		fallback = d
	}
	return fallback, fallback != nil
}

// Loopback resolves the loopback source for the default output of b.
func Loopback(b Backend) (Device, error) {
	speaker, err := b.DefaultOutputName()
	if err != nil {
		return nil, fmt.Errorf("%w: default output: %w", ErrDeviceUnavailable, err)
	}
	candidates, err := b.Candidates()
	if err != nil {
		return nil, fmt.Errorf("%w: list devices: %w", ErrDeviceUnavailable, err)
	}
	dev, ok := ResolveLoopback(speaker, candidates)
	if !ok {
		return nil, fmt.Errorf("%w: no capture device matches %q", ErrDeviceUnavailable, speaker)
	}
	return dev, nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
