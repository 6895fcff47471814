package nats

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/smazurov/alsavolume/internal/audio"
	"github.com/smazurov/alsavolume/internal/events"
)

// Subjects used by the bridge.
const (
	SubjectPrefix       = "alsavolume"
	SubjectCommand      = SubjectPrefix + ".command"
	SubjectReadings     = SubjectPrefix + ".readings"
	SubjectEventsPrefix = SubjectPrefix + ".events"
)

// SubjectEvent returns the subject an event of the given kind is published on.
func SubjectEvent(kind string) string {
	return fmt.Sprintf("%s.%s", SubjectEventsPrefix, kind)
}

// eventKind names the subject suffix for a bus event. Log entries are not
// forwarded.
func eventKind(ev events.Event) (string, bool) {
	switch ev.(type) {
	case events.VolumeChangedEvent:
		return "volume_changed", true
	case events.CommandFailedEvent:
		return "command_failed", true
	case events.SoundDeviceEvent:
		return "sound_device", true
	case events.ControlsReloadedEvent:
		return "controls_reloaded", true
	default:
		return "", false
	}
}

// UnmarshalCommand decodes a command request. Numbers are kept as
// json.Number so the mixer applies its own coercion rules.
func UnmarshalCommand(data []byte) (audio.Params, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var params audio.Params
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("invalid command request: %w", err)
	}
	if params == nil {
		params = audio.Params{}
	}
	return params, nil
}

// UnmarshalResult decodes a command reply.
func UnmarshalResult(data []byte) (audio.Result, error) {
	var res audio.Result
	err := json.Unmarshal(data, &res)
	return res, err
}

// UnmarshalReadings decodes a readings reply.
func UnmarshalReadings(data []byte) (map[string]any, error) {
	var out map[string]any
	err := json.Unmarshal(data, &out)
	return out, err
}
