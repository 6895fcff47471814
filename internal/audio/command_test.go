package audio

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/smazurov/alsavolume/internal/events"
)

func TestSetVolumeRejectsOutOfRange(t *testing.T) {
	for _, volume := range []any{101, -1, 150, "150"} {
		runner := newScriptedRunner()
		svc := newTestService(t, runner)

		res := svc.Execute(context.Background(), Params{"command": "set_volume", "volume": volume, "card": 0})
		if res.OK() {
			t.Fatalf("volume %v accepted", volume)
		}
		if res.Error != "volume must be between 0 and 100" {
			t.Fatalf("volume %v: error = %q", volume, res.Error)
		}
		if calls := runner.Calls(); len(calls) != 0 {
			t.Fatalf("volume %v: validation issued commands %q", volume, calls)
		}

		var verr *ValidationError
		if !errors.As(res.Err, &verr) {
			t.Fatalf("volume %v: Err = %v, want *ValidationError", volume, res.Err)
		}

		data, _ := json.Marshal(res)
		if string(data) != `{"error":"volume must be between 0 and 100"}` {
			t.Fatalf("volume %v: json = %s", volume, data)
		}
	}
}

func TestSetVolumeBoundaries(t *testing.T) {
	for _, volume := range []int{0, 100} {
		runner := newScriptedRunner().
			on("amixer -c 0 get Master", succeeded(masterReply))
		setCmd := "amixer -c 0 set Master " + map[int]string{0: "0%", 100: "100%"}[volume]
		runner.on(setCmd, succeeded("Simple mixer control 'Master',0\n"))
		svc := newTestService(t, runner)

		res := svc.Execute(context.Background(), Params{"command": "set_volume", "volume": volume, "card": 0})
		if !res.OK() {
			t.Fatalf("volume %d rejected: %s", volume, res.Error)
		}
		if !runner.called(setCmd) {
			t.Fatalf("expected %q in %q", setCmd, runner.Calls())
		}
	}
}

func TestSetVolumeSuccessShape(t *testing.T) {
	pub := &recordingPublisher{}
	runner := newScriptedRunner().
		on("amixer -c 1 get Speaker", succeeded(masterReply)).
		on("amixer -c 1 set Speaker 42%", succeeded("  Mono: Playback 36 [42%] [on]\n"))
	svc := newTestService(t, runner, func(o *Options) { o.Events = pub })

	res := svc.Execute(context.Background(), Params{"command": "set_volume", "volume": 42.8, "card": "1"})

	got := res.Map()
	want := map[string]any{
		"success": true,
		"card":    1,
		"volume":  42,
		"control": "Speaker",
		"output":  "Mono: Playback 36 [42%] [on]",
	}
	if len(got) != len(want) {
		t.Fatalf("Map() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}

	evs := pub.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	ev, ok := evs[0].(events.VolumeChangedEvent)
	if !ok || ev.Card != 1 || ev.Control != "Speaker" || ev.Volume == nil || *ev.Volume != 42 {
		t.Fatalf("unexpected event %+v", evs[0])
	}
}

func TestToggleMuteFailure(t *testing.T) {
	pub := &recordingPublisher{}
	runner := newScriptedRunner().
		on("amixer -c 1 set PCM toggle", exited("amixer: Invalid card number."))
	svc := newTestService(t, runner, func(o *Options) { o.Events = pub })

	res := svc.Execute(context.Background(), Params{"command": "toggle_mute", "card": 1})

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"action":"toggle","card":1,"control":"PCM","error":"Failed to toggle: amixer: Invalid card number."}`
	if string(data) != want {
		t.Fatalf("json = %s\nwant   %s", data, want)
	}

	evs := pub.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	if ev, ok := evs[0].(events.CommandFailedEvent); !ok || ev.Command != "toggle_mute" || ev.Card != 1 {
		t.Fatalf("unexpected event %+v", evs[0])
	}
}

func TestMuteActions(t *testing.T) {
	tests := []struct {
		command string
		action  string
	}{
		{"mute", "mute"},
		{"unmute", "unmute"},
		{"toggle_mute", "toggle"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			setCmd := "amixer -c 0 set Master " + tt.action
			runner := newScriptedRunner().
				on("amixer -c 0 get Master", succeeded(masterReply)).
				on(setCmd, succeeded("ok\n"))
			svc := newTestService(t, runner)

			res := svc.Execute(context.Background(), Params{"command": tt.command, "card": 0.0})
			if !res.OK() {
				t.Fatalf("Execute() error = %s", res.Error)
			}
			if res.Action != tt.action || res.Control != "Master" || res.Output != "ok" {
				t.Fatalf("unexpected result %+v", res)
			}
			if !runner.called(setCmd) {
				t.Fatalf("expected %q in %q", setCmd, runner.Calls())
			}
		})
	}
}

func TestMuteRequiresCard(t *testing.T) {
	runner := newScriptedRunner()
	svc := newTestService(t, runner)

	for _, params := range []Params{
		{"command": "mute"},
		{"command": "mute", "card": "first"},
		{"command": "mute", "card": -2},
	} {
		res := svc.Execute(context.Background(), params)
		if res.OK() || res.Err == nil {
			t.Fatalf("%v accepted", params)
		}
	}
	if calls := runner.Calls(); len(calls) != 0 {
		t.Fatalf("validation issued commands %q", calls)
	}
}

func TestPlayTest(t *testing.T) {
	tone := newScriptedRunner().
		on("speaker-test -D hw:1,0 -c 2 -t wav -l 1", succeeded("speaker-test 1.2.8\n\nPlayback device is hw:1,0\n"))
	mixer := newScriptedRunner()
	svc := newTestService(t, mixer, func(o *Options) { o.ToneRunner = tone })

	res := svc.Execute(context.Background(), Params{"command": "play_test", "card": 1})
	if !res.OK() {
		t.Fatalf("Execute() error = %s", res.Error)
	}

	got := res.Map()
	if got["device"] != 0 || got["channels"] != 2 || got["card"] != 1 {
		t.Fatalf("Map() = %v", got)
	}
	if _, ok := got["control"]; ok {
		t.Fatalf("play_test should not report a control: %v", got)
	}
	if len(mixer.Calls()) != 0 {
		t.Fatalf("play_test used the mixer runner: %q", mixer.Calls())
	}
}

func TestPlayTestChannels(t *testing.T) {
	tests := []struct {
		channels any
		ok       bool
	}{
		{0, false},
		{1, true},
		{8, true},
		{9, false},
		{"6", true},
		{"stereo", false},
	}

	for _, tt := range tests {
		runner := newScriptedRunner()
		for _, n := range []string{"1", "6", "8"} {
			runner.on("speaker-test -D hw:0,3 -c "+n+" -t wav -l 1", succeeded(""))
		}
		svc := newTestService(t, runner)

		res := svc.Execute(context.Background(), Params{"command": "play_test", "card": 0, "device": 3, "channels": tt.channels})
		if res.OK() != tt.ok {
			t.Fatalf("channels %v: OK() = %v, error %q", tt.channels, res.OK(), res.Error)
		}
		if !tt.ok && len(runner.Calls()) != 0 {
			t.Fatalf("channels %v: validation issued commands", tt.channels)
		}
	}
}

func TestPlayTestFailure(t *testing.T) {
	runner := newScriptedRunner().
		on("speaker-test -D hw:0,0 -c 2 -t wav -l 1", exited("Playback open error: -16,Device or resource busy"))
	svc := newTestService(t, runner)

	res := svc.Execute(context.Background(), Params{"command": "play_test", "card": 0})
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Error != "Failed to play test tone: Playback open error: -16,Device or resource busy" {
		t.Fatalf("error = %q", res.Error)
	}
}

func TestUnknownCommand(t *testing.T) {
	svc := newTestService(t, newScriptedRunner())

	for _, params := range []Params{
		{"command": "explode"},
		{"command": 7},
		{},
	} {
		res := svc.Execute(context.Background(), params)
		if !errors.Is(res.Err, ErrUnknownCommand) {
			t.Fatalf("%v: Err = %v", params, res.Err)
		}
		for _, name := range SupportedCommands {
			if !strings.Contains(res.Error, name) {
				t.Fatalf("%v: error %q does not list %s", params, res.Error, name)
			}
		}
	}

	res := svc.Execute(context.Background(), Params{"command": "explode"})
	if !strings.HasPrefix(res.Error, "Unknown command: explode.") {
		t.Fatalf("error = %q", res.Error)
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	svc := newTestService(t, panicRunner{})

	res := svc.Execute(context.Background(), Params{"command": "mute", "card": 0})
	if res.OK() || res.Error != "mixer exploded" {
		t.Fatalf("Execute() = %+v", res)
	}
}
