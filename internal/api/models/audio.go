package models

// AudioDevice is one playback device reported by aplay.
type AudioDevice struct {
	Card       int    `json:"card" example:"0" doc:"Sound card index"`
	CardName   string `json:"card_name" example:"PCH [HDA Intel PCH]" doc:"Card name as reported by aplay"`
	Device     int    `json:"device" example:"0" doc:"Device index on the card"`
	DeviceName string `json:"device_name" example:"ALC892 Analog" doc:"Device name"`
	DeviceDesc string `json:"device_desc" example:"ALC892 Analog" doc:"Device description"`
	ALSADevice string `json:"alsa_device" example:"hw:0,0" doc:"ALSA hardware address"`
}

// AudioDevicesData is the device listing.
type AudioDevicesData struct {
	Devices []AudioDevice `json:"devices" doc:"Playback devices in aplay order"`
	Count   int           `json:"count" example:"2" doc:"Number of devices found"`
}

type AudioDevicesResponse struct {
	Body AudioDevicesData
}

// ReadingsResponse is keyed by card_<card>_device_<device>, or holds a
// single no_devices or error entry.
type ReadingsResponse struct {
	Body map[string]any
}

type CardInput struct {
	Card int `path:"card" minimum:"0" example:"0" doc:"Sound card index"`
}

// CardControlData is the result of a full control discovery on one card.
type CardControlData struct {
	Card          int    `json:"card" example:"0" doc:"Sound card index"`
	Available     bool   `json:"available" example:"true" doc:"Whether any control produced a reading"`
	Control       string `json:"control" example:"Master" doc:"Resolved control, or N/A"`
	VolumePercent *int   `json:"volume_percent,omitempty" example:"55" doc:"Volume percent"`
	Muted         *bool  `json:"muted,omitempty" example:"false" doc:"Mute state"`
}

type CardControlResponse struct {
	Body CardControlData
}

// ControlsData is the control priority list in effect.
type ControlsData struct {
	Controls []string `json:"controls" example:"[\"Master\",\"PCM\"]" doc:"Control names tried in order when ranking"`
}

type ControlsResponse struct {
	Body ControlsData
}

// CommandRequest is a flat object with a command discriminator and loosely
// typed numeric parameters (volume, card, device, channels).
type CommandRequest struct {
	Body map[string]any `doc:"Command and parameters, e.g. {\"command\":\"set_volume\",\"volume\":50,\"card\":0}"`
}

// CommandResponse carries either {success: true, ...} or {error: ...}.
type CommandResponse struct {
	Body map[string]any
}
