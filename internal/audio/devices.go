package audio

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// deviceLine matches one playback device line of `aplay -l`:
//
//	card 0: PCH [HDA Intel PCH], device 0: ALC892 Analog [ALC892 Analog]
var deviceLine = regexp.MustCompile(`^card (\d+): ([^,]+), device (\d+): ([^\[]+)\[([^\]]+)\]`)

// Device is one playback endpoint reported by aplay.
type Device struct {
	CardNumber   int    `json:"card"`
	CardName     string `json:"card_name"`
	DeviceNumber int    `json:"device"`
	DeviceName   string `json:"device_name"`
	DeviceDesc   string `json:"device_desc"`
}

// Key returns the reading map key, card_<card>_device_<device>.
func (d Device) Key() string {
	return fmt.Sprintf("card_%d_device_%d", d.CardNumber, d.DeviceNumber)
}

// Card returns the card index as text, the form amixer's -c flag takes.
func (d Device) Card() string {
	return strconv.Itoa(d.CardNumber)
}

// ALSADevice returns the hw:<card>,<device> address.
func (d Device) ALSADevice() string {
	return FormatALSADevice(d.CardNumber, d.DeviceNumber)
}

// FormatALSADevice formats a hardware PCM address.
func FormatALSADevice(card, device int) string {
	return fmt.Sprintf("hw:%d,%d", card, device)
}

// ParseDevices extracts devices from `aplay -l` output in order of
// appearance. Header, subdevice and blank lines are skipped.
func ParseDevices(output string) []Device {
	var devices []Device
	for _, line := range strings.Split(output, "\n") {
		m := deviceLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		card, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		device, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		devices = append(devices, Device{
			CardNumber:   card,
			CardName:     strings.TrimSpace(m[2]),
			DeviceNumber: device,
			DeviceName:   strings.TrimSpace(m[4]),
			DeviceDesc:   strings.TrimSpace(m[5]),
		})
	}
	return devices
}

// ListDevices runs `aplay -l`. Any failure yields an empty list.
func (s *Service) ListDevices(ctx context.Context) []Device {
	res := s.runner.Run(ctx, s.tools.Aplay, "-l")
	if !res.OK() {
		s.logger.Error("aplay -l failed", "failure", res.Failure.String(), "error", res.ErrorText())
		return nil
	}

	devices := ParseDevices(res.Stdout)
	s.logger.Debug("Enumerated playback devices", "count", len(devices))
	return devices
}
