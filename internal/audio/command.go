package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"

	"github.com/smazurov/alsavolume/internal/events"
	"github.com/smazurov/alsavolume/internal/metrics"
)

// Command names.
const (
	CommandSetVolume  = "set_volume"
	CommandMute       = "mute"
	CommandUnmute     = "unmute"
	CommandToggleMute = "toggle_mute"
	CommandPlayTest   = "play_test"
)

// SupportedCommands lists the accepted discriminators in display order.
var SupportedCommands = []string{
	CommandSetVolume,
	CommandMute,
	CommandUnmute,
	CommandToggleMute,
	CommandPlayTest,
}

// muteActions maps mute commands to amixer switch arguments.
var muteActions = map[string]string{
	CommandMute:       "mute",
	CommandUnmute:     "unmute",
	CommandToggleMute: "toggle",
}

// Test tone limits.
const (
	DefaultTestDevice   = 0
	DefaultTestChannels = 2
	MinTestChannels     = 1
	MaxTestChannels     = 8
)

// Result is the outcome of one command. Success results echo the normalized
// parameters and the raw tool output; failures carry a single message plus
// whatever parameters were resolved before the tool failed.
type Result struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Card     *int   `json:"card"`
	Volume   *int   `json:"volume"`
	Action   string `json:"action"`
	Device   *int   `json:"device"`
	Channels *int   `json:"channels"`
	Control  string `json:"control"`
	Output   string `json:"output"`

	// Err holds the *ValidationError for rejected requests. Not serialized.
	Err error `json:"-"`
}

// OK reports whether the command succeeded.
func (r Result) OK() bool { return r.Success }

// Map renders the result in its wire shape.
func (r Result) Map() map[string]any {
	m := make(map[string]any)
	if r.Success {
		m["success"] = true
		m["output"] = r.Output
	} else {
		m["error"] = r.Error
	}
	if r.Card != nil {
		m["card"] = *r.Card
	}
	if r.Volume != nil {
		m["volume"] = *r.Volume
	}
	if r.Action != "" {
		m["action"] = r.Action
	}
	if r.Device != nil {
		m["device"] = *r.Device
	}
	if r.Channels != nil {
		m["channels"] = *r.Channels
	}
	if r.Control != "" {
		m["control"] = r.Control
	}
	return m
}

// MarshalJSON encodes the wire shape.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

func errorResult(msg string) Result {
	return Result{Error: msg}
}

// Execute validates params and runs the command. It never panics; any
// unexpected fault becomes an error result.
func (s *Service) Execute(ctx context.Context, params Params) (result Result) {
	command := params.Command()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic while executing command", "command", command, "panic", r, "stack", string(debug.Stack()))
			metrics.CountCommand(metricCommand(command), "error")
			result = errorResult(fmt.Sprintf("%v", r))
		}
	}()

	switch command {
	case CommandSetVolume:
		result = s.setVolume(ctx, params)
	case CommandMute, CommandUnmute, CommandToggleMute:
		result = s.setMute(ctx, command, params)
	case CommandPlayTest:
		result = s.playTest(ctx, params)
	default:
		result = s.rejected(command, unknownCommand(params))
	}
	return result
}

func unknownCommand(params Params) *ValidationError {
	supported := strings.Join(SupportedCommands, ", ")
	raw, present := params["command"]
	if !present || raw == nil {
		return &ValidationError{
			Message: "command parameter is required. Supported commands: " + supported,
			Err:     ErrUnknownCommand,
		}
	}
	return &ValidationError{
		Message: fmt.Sprintf("Unknown command: %v. Supported commands: %s", raw, supported),
		Err:     ErrUnknownCommand,
	}
}

func (s *Service) rejected(command string, err error) Result {
	s.logger.Warn("Rejected command", "command", command, "error", err)
	metrics.CountCommand(metricCommand(command), "invalid")
	return Result{Error: err.Error(), Err: err}
}

func (s *Service) setVolume(ctx context.Context, params Params) Result {
	volume, err := params.Int("volume")
	if err != nil {
		return s.rejected(CommandSetVolume, err)
	}
	card, err := params.card()
	if err != nil {
		return s.rejected(CommandSetVolume, err)
	}
	if volume < 0 || volume > 100 {
		return s.rejected(CommandSetVolume, invalid("volume must be between 0 and 100"))
	}

	control := s.ResolveControlName(ctx, card)
	res := s.runner.Run(ctx, s.tools.Amixer, "-c", strconv.Itoa(card), "set", control, fmt.Sprintf("%d%%", volume))

	result := Result{Card: &card, Volume: &volume, Control: control}
	if !res.OK() {
		result.Error = "Failed to set volume: " + res.ErrorText()
		s.failed(CommandSetVolume, card, control, result.Error)
		return result
	}

	result.Success = true
	result.Output = strings.TrimSpace(res.Stdout)
	s.logger.Info("Set volume", "card", card, "control", control, "volume", volume)
	metrics.CountCommand(CommandSetVolume, "ok")
	s.publish(events.VolumeChangedEvent{
		Card:      card,
		Command:   CommandSetVolume,
		Control:   control,
		Volume:    &volume,
		Timestamp: now(),
	})
	return result
}

func (s *Service) setMute(ctx context.Context, command string, params Params) Result {
	card, err := params.card()
	if err != nil {
		return s.rejected(command, err)
	}
	action := muteActions[command]

	control := s.ResolveControlName(ctx, card)
	res := s.runner.Run(ctx, s.tools.Amixer, "-c", strconv.Itoa(card), "set", control, action)

	result := Result{Card: &card, Action: action, Control: control}
	if !res.OK() {
		result.Error = fmt.Sprintf("Failed to %s: %s", action, res.ErrorText())
		s.failed(command, card, control, result.Error)
		return result
	}

	result.Success = true
	result.Output = strings.TrimSpace(res.Stdout)
	s.logger.Info("Changed mute state", "card", card, "control", control, "action", action)
	metrics.CountCommand(command, "ok")
	s.publish(events.VolumeChangedEvent{
		Card:      card,
		Command:   command,
		Control:   control,
		Action:    action,
		Timestamp: now(),
	})
	return result
}

func (s *Service) playTest(ctx context.Context, params Params) Result {
	card, err := params.card()
	if err != nil {
		return s.rejected(CommandPlayTest, err)
	}
	device, err := params.OptionalInt("device", DefaultTestDevice)
	if err != nil {
		return s.rejected(CommandPlayTest, err)
	}
	if device < 0 {
		return s.rejected(CommandPlayTest, invalid("device must be a valid device number"))
	}
	channels, err := params.OptionalInt("channels", DefaultTestChannels)
	if err != nil {
		return s.rejected(CommandPlayTest, err)
	}
	if channels < MinTestChannels || channels > MaxTestChannels {
		return s.rejected(CommandPlayTest, invalid("channels must be between %d and %d", MinTestChannels, MaxTestChannels))
	}

	res := s.toneRunner.Run(ctx, s.tools.SpeakerTest,
		"-D", FormatALSADevice(card, device),
		"-c", strconv.Itoa(channels),
		"-t", "wav",
		"-l", "1",
	)

	result := Result{Card: &card, Device: &device, Channels: &channels}
	if !res.OK() {
		result.Error = "Failed to play test tone: " + res.ErrorText()
		s.failed(CommandPlayTest, card, "", result.Error)
		return result
	}

	result.Success = true
	result.Output = strings.TrimSpace(res.Stdout)
	s.logger.Info("Played test tone", "card", card, "device", device, "channels", channels)
	metrics.CountCommand(CommandPlayTest, "ok")
	return result
}

func (s *Service) failed(command string, card int, control, msg string) {
	s.logger.Error("Command failed", "command", command, "card", card, "control", control, "error", msg)
	metrics.CountCommand(command, "error")
	s.publish(events.CommandFailedEvent{
		Card:      card,
		Command:   command,
		Control:   control,
		Error:     msg,
		Timestamp: now(),
	})
}

// metricCommand keeps label cardinality bounded for unknown discriminators.
func metricCommand(command string) string {
	if slices.Contains(SupportedCommands, command) {
		return command
	}
	return "unknown"
}
