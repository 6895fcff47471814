package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/smazurov/alsavolume/internal/audio"
	"github.com/smazurov/alsavolume/internal/updater"
)

type fakeMixer struct {
	params audio.Params
	result audio.Result
}

func (f *fakeMixer) SafeReadings(_ context.Context) map[string]any {
	return map[string]any{"no_devices": map[string]any{"message": "No audio devices found"}}
}

func (f *fakeMixer) Execute(_ context.Context, params audio.Params) audio.Result {
	f.params = params
	return f.result
}

func TestCommandParamsOnlyForwardsSetFlags(t *testing.T) {
	c := CreateCommandCmd(func() Mixer { return &fakeMixer{} })
	if err := c.Flags().Parse([]string{"--card", "1", "--volume", "40.5"}); err != nil {
		t.Fatal(err)
	}

	params, err := commandParams(c, "set_volume")
	if err != nil {
		t.Fatal(err)
	}
	if params.Command() != "set_volume" {
		t.Fatalf("command = %q", params.Command())
	}
	if v, err := params.Int("volume"); err != nil || v != 40 {
		t.Fatalf("volume = %d, %v", v, err)
	}
	if _, ok := params["device"]; ok {
		t.Fatal("unset device flag was forwarded")
	}
}

func TestRunCommandWritesResult(t *testing.T) {
	card := 1
	mixer := &fakeMixer{result: audio.Result{Error: "Failed to toggle: amixer: Invalid card number.", Card: &card, Action: "toggle", Control: "PCM"}}

	var out bytes.Buffer
	ok := runCommand(context.Background(), mixer, &out, audio.Params{"command": "toggle_mute", "card": "1"})
	if ok {
		t.Fatal("expected failure")
	}

	var body map[string]any
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if body["action"] != "toggle" || body["control"] != "PCM" || body["card"] != float64(1) {
		t.Fatalf("body = %v", body)
	}
}

func TestRunCommandSuccess(t *testing.T) {
	mixer := &fakeMixer{result: audio.Result{Success: true, Output: "ok"}}

	var out bytes.Buffer
	if !runCommand(context.Background(), mixer, &out, audio.Params{"command": "mute", "card": "0"}) {
		t.Fatal("expected success")
	}
	if mixer.params["card"] != "0" {
		t.Fatalf("params = %v", mixer.params)
	}
}

func TestReadingsCmdPrintsJSON(t *testing.T) {
	c := CreateReadingsCmd(func() Mixer { return &fakeMixer{} })
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs([]string{"--verbose"})

	if err := c.Execute(); err != nil {
		t.Fatal(err)
	}

	var body map[string]any
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if _, ok := body["no_devices"]; !ok {
		t.Fatalf("body = %v", body)
	}
}

func TestOpenMixerDefaultsToLocalService(t *testing.T) {
	local := &fakeMixer{}
	mixer, closeMixer, err := openMixer(func() Mixer { return local }, "")
	if err != nil {
		t.Fatal(err)
	}
	defer closeMixer()
	if mixer != Mixer(local) {
		t.Fatal("expected the local service")
	}
}

func TestOpenMixerUnreachableNATS(t *testing.T) {
	if _, _, err := openMixer(func() Mixer { return &fakeMixer{} }, "nats://127.0.0.1:59999"); err == nil {
		t.Fatal("expected connection error")
	}
}

type fakeUpdater struct {
	info    *updater.UpdateInfo
	err     error
	applied bool
}

func (f *fakeUpdater) Check(_ context.Context) (*updater.UpdateInfo, error) {
	return f.info, f.err
}

func (f *fakeUpdater) Apply(_ context.Context) (*updater.UpdateInfo, error) {
	f.applied = true
	return f.info, f.err
}

func TestRunUpdateCheckOnly(t *testing.T) {
	u := &fakeUpdater{info: &updater.UpdateInfo{CurrentVersion: "v1.0.0", LatestVersion: "v1.1.0", UpdateAvailable: true}}

	var out, errOut bytes.Buffer
	if !runUpdate(context.Background(), u, true, &out, &errOut) {
		t.Fatalf("stderr = %s", errOut.String())
	}
	if u.applied {
		t.Fatal("--check must not apply")
	}

	var body map[string]any
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["latest_version"] != "v1.1.0" || body["update_available"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestRunUpdateAlreadyCurrent(t *testing.T) {
	u := &fakeUpdater{
		info: &updater.UpdateInfo{CurrentVersion: "v1.1.0", LatestVersion: "v1.1.0"},
		err:  &updater.Error{Code: updater.ErrCodeNoUpdate, Message: "no update available"},
	}

	var out, errOut bytes.Buffer
	if !runUpdate(context.Background(), u, false, &out, &errOut) {
		t.Fatal("being up to date is not a failure")
	}
	if errOut.Len() != 0 {
		t.Fatalf("stderr = %s", errOut.String())
	}
}

func TestRunUpdateFailure(t *testing.T) {
	u := &fakeUpdater{err: &updater.Error{Code: updater.ErrCodeCheckFailed, Message: "failed to check for updates"}}

	var out, errOut bytes.Buffer
	if runUpdate(context.Background(), u, false, &out, &errOut) {
		t.Fatal("expected failure")
	}
	if !strings.Contains(errOut.String(), "CHECK_FAILED") {
		t.Fatalf("stderr = %s", errOut.String())
	}
}
