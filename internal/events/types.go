package events

// Event type constants for kelindar/event.
const (
	TypeVolumeChanged uint32 = iota + 1
	TypeCommandFailed
	TypeSoundDevice
	TypeControlsReloaded
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// VolumeChangedEvent is published after a mixer command succeeds.
type VolumeChangedEvent struct {
	Card      int    `json:"card" example:"0" doc:"Sound card index"`
	Command   string `json:"command" example:"set_volume" doc:"Command that changed the mixer"`
	Control   string `json:"control" example:"Master" doc:"Mixer control that was changed"`
	Volume    *int   `json:"volume,omitempty" example:"55" doc:"New volume percent, for set_volume"`
	Action    string `json:"action,omitempty" example:"toggle" doc:"Mute action, for mute commands"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for VolumeChangedEvent.
func (e VolumeChangedEvent) Type() uint32 { return TypeVolumeChanged }

// CommandFailedEvent is published when the mixer or test-tone tool rejects a command.
type CommandFailedEvent struct {
	Card      int    `json:"card" example:"1" doc:"Sound card index"`
	Command   string `json:"command" example:"toggle_mute" doc:"Command that failed"`
	Control   string `json:"control,omitempty" example:"PCM" doc:"Mixer control that was targeted"`
	Error     string `json:"error" example:"Failed to toggle: Invalid card number" doc:"Error message"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CommandFailedEvent.
func (e CommandFailedEvent) Type() uint32 { return TypeCommandFailed }

// SoundDeviceEvent represents a kernel hotplug event in the sound subsystem.
type SoundDeviceEvent struct {
	Action    string `json:"action" example:"add" doc:"Kernel action: add, remove, change"`
	DevName   string `json:"dev_name,omitempty" example:"snd/controlC1" doc:"Kernel device name"`
	DevPath   string `json:"dev_path" example:"/devices/pci0000:00/0000:00:14.0/usb1/1-2/1-2:1.0/sound/card1" doc:"Kernel device path"`
	Card      *int   `json:"card,omitempty" example:"1" doc:"Card index, when the event names one"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SoundDeviceEvent.
func (e SoundDeviceEvent) Type() uint32 { return TypeSoundDevice }

// ControlsReloadedEvent is published when the control priority list changes.
type ControlsReloadedEvent struct {
	Controls  []string `json:"controls" example:"[\"Master\",\"PCM\"]" doc:"New control priority list"`
	Timestamp string   `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ControlsReloadedEvent.
func (e ControlsReloadedEvent) Type() uint32 { return TypeControlsReloaded }

// LogEntryEvent carries one log line to live log subscribers.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Log buffer sequence number"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"audio" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Card       *int           `json:"card,omitempty" example:"1" doc:"Sound card the entry concerns"`
	Control    string         `json:"control,omitempty" example:"Master" doc:"Mixer control the entry concerns"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
