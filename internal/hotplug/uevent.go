// Package hotplug watches kernel uevents for sound cards appearing,
// changing or disappearing, without cgo or udev.
package hotplug

import (
	"bytes"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Kernel actions of interest.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// SubsystemSound is the uevent subsystem for ALSA devices.
const SubsystemSound = "sound"

var (
	cardObject  = regexp.MustCompile(`^card(\d+)$`)
	controlNode = regexp.MustCompile(`^snd/controlC(\d+)$`)
)

// Event is one parsed kernel uevent.
type Event struct {
	Action    string
	KObj      string // /devices/.../sound/card1
	Subsystem string
	DevName   string // snd/controlC1, relative to /dev
	DevPath   string
	Env       map[string]string
}

// IsCard reports whether the event describes a whole card rather than one
// of its PCM, control or timer nodes.
func (e Event) IsCard() bool {
	return cardObject.MatchString(path.Base(e.KObj))
}

// Card returns the card index named by the kobject or device node.
func (e Event) Card() (int, bool) {
	if m := cardObject.FindStringSubmatch(path.Base(e.KObj)); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	if m := controlNode.FindStringSubmatch(e.DevName); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	return 0, false
}

// ParseUEvent decodes "ACTION@KOBJ\0KEY=VALUE\0...". A leading libudev
// header is skipped. Nil is returned for anything without an action.
func ParseUEvent(data []byte) *Event {
	if bytes.HasPrefix(data, []byte("libudev")) {
		data = skipUdevHeader(data)
	}

	parts := bytes.Split(data, []byte{0})
	if len(parts) == 0 || len(parts[0]) == 0 {
		return nil
	}

	action, kobj, ok := strings.Cut(string(parts[0]), "@")
	if !ok || action == "" {
		return nil
	}

	ev := &Event{Action: action, KObj: kobj, Env: make(map[string]string)}
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(string(part), "=")
		if !ok || key == "" {
			continue
		}
		ev.Env[key] = value

		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVNAME":
			ev.DevName = value
		case "DEVPATH":
			ev.DevPath = value
		}
	}
	if ev.DevPath == "" {
		ev.DevPath = kobj
	}
	return ev
}

// skipUdevHeader returns the first NUL-separated segment that looks like
// "action@path", or data unchanged.
func skipUdevHeader(data []byte) []byte {
	for i := 0; i < len(data)-1; i++ {
		if data[i] != 0 {
			continue
		}
		rest := data[i+1:]
		head := rest
		if end := bytes.IndexByte(rest, 0); end >= 0 {
			head = rest[:end]
		}
		if idx := bytes.IndexByte(head, '@'); idx > 0 && idx < 20 {
			return rest
		}
	}
	return data
}
