package audio

import (
	"regexp"
	"strconv"
)

var (
	percentToken = regexp.MustCompile(`\[(\d+)%\]`)
	switchToken  = regexp.MustCompile(`\[(on|off)\]`)
)

// NotAvailable is rendered in place of any field of an unavailable reading.
const NotAvailable = "N/A"

// Reading is the volume state parsed from one `amixer get` reply.
type Reading struct {
	Volume int
	Muted  bool
}

// ParseReading extracts the first [NN%] and first [on]/[off] token.
// Both must be present. amixer reports the playback switch, so [on] means
// unmuted. For multi-channel controls the first channel wins.
func ParseReading(output string) (Reading, bool) {
	pm := percentToken.FindStringSubmatch(output)
	if pm == nil {
		return Reading{}, false
	}
	sm := switchToken.FindStringSubmatch(output)
	if sm == nil {
		return Reading{}, false
	}

	volume, err := strconv.Atoi(pm[1])
	if err != nil {
		return Reading{}, false
	}

	return Reading{
		Volume: min(volume, 100),
		Muted:  sm[1] == "off",
	}, true
}

// VolumeReading is the resolved state of one card. When Available is false
// every field is unavailable; the control, volume and mute bit always come
// from the same probe.
type VolumeReading struct {
	Control   string
	Volume    int
	Muted     bool
	Available bool
}

// Unavailable is returned when no control on a card yields a reading.
var Unavailable = VolumeReading{}

// VolumeValue returns the volume percent, or NotAvailable.
func (v VolumeReading) VolumeValue() any {
	if !v.Available {
		return NotAvailable
	}
	return v.Volume
}

// MutedValue returns the mute flag, or NotAvailable.
func (v VolumeReading) MutedValue() any {
	if !v.Available {
		return NotAvailable
	}
	return v.Muted
}

// ControlValue returns the control name, or NotAvailable.
func (v VolumeReading) ControlValue() string {
	if !v.Available {
		return NotAvailable
	}
	return v.Control
}
