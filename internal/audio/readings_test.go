package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smazurov/alsavolume/internal/process"
)

func TestReadingsScenarioSingleCard(t *testing.T) {
	runner := newScriptedRunner().
		on("aplay -l", succeeded("card 0: PCH [HDA Intel PCH], device 0: ALC892 Analog [ALC892 Analog]\n")).
		on("amixer -c 0 controls", succeeded("")).
		on("amixer -c 0 get Master", succeeded("  Mono: Playback 48 [55%] [-29.25dB] [on]\n"))
	svc := newTestService(t, runner)

	out := svc.SafeReadings(context.Background())
	entry, ok := out["card_0_device_0"].(map[string]any)
	if !ok {
		t.Fatalf("missing card_0_device_0 in %v", out)
	}

	want := map[string]any{
		"card":           0,
		"card_name":      "PCH [HDA Intel PCH]",
		"device":         0,
		"device_name":    "ALC892 Analog",
		"device_desc":    "ALC892 Analog",
		"volume_percent": 55,
		"muted":          false,
		"control":        "Master",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v (%T), want %v", k, entry[k], entry[k], v)
		}
	}
}

func TestReadingsScenarioNoDevices(t *testing.T) {
	runner := newScriptedRunner().on("aplay -l", succeeded("**** List of PLAYBACK Hardware Devices ****\n"))
	svc := newTestService(t, runner)

	data, err := json.Marshal(svc.SafeReadings(context.Background()))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"no_devices":{"message":"No audio devices found"}}` {
		t.Fatalf("readings = %s", got)
	}
}

func TestReadingsPartialSuccess(t *testing.T) {
	runner := newScriptedRunner().
		on("aplay -l", succeeded(aplayReply)).
		on("amixer -c 0 controls", succeeded(controlsReply)).
		on("amixer -c 0 get Master", succeeded(masterReply)).
		on("amixer -c 1 controls", succeeded("numid=1,iface=MIXER,name='Mic Capture Volume'\n"))
	svc := newTestService(t, runner)

	out := svc.SafeReadings(context.Background())
	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(out), out)
	}

	hdmi := out["card_0_device_3"].(map[string]any)
	if hdmi["control"] != "Master" || hdmi["volume_percent"] != 55 {
		t.Errorf("devices on one card should share its reading, got %v", hdmi)
	}

	usb := out["card_1_device_0"].(map[string]any)
	for _, k := range []string{"volume_percent", "muted", "control"} {
		if usb[k] != NotAvailable {
			t.Errorf("card 1 %s = %v, want %q", k, usb[k], NotAvailable)
		}
	}
}

func TestReadingsProbesEachCardOnce(t *testing.T) {
	runner := newScriptedRunner().
		on("aplay -l", succeeded(aplayReply)).
		on("amixer -c 0 controls", succeeded(controlsReply)).
		on("amixer -c 0 get Master", succeeded(masterReply)).
		on("amixer -c 1 controls", succeeded("")).
		on("amixer -c 1 get Master", succeeded(masterReply))
	svc := newTestService(t, runner)

	svc.Readings(context.Background())

	count := 0
	for _, c := range runner.Calls() {
		if strings.HasPrefix(c, "amixer -c 0 controls") {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("card 0 listed %d times, want 1", count)
	}
}

func TestReadingsPreservesEnumerationOrder(t *testing.T) {
	runner := newScriptedRunner().on("aplay -l", succeeded(aplayReply))
	svc := newTestService(t, runner)

	readings := svc.Readings(context.Background())
	keys := make([]string, len(readings))
	for i, r := range readings {
		keys[i] = r.Key()
	}
	want := []string{"card_0_device_0", "card_0_device_3", "card_1_device_0"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", keys, want)
	}
}

// slowRunner delays each amixer call and tracks peak concurrency.
type slowRunner struct {
	inner    *scriptedRunner
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (r *slowRunner) Run(ctx context.Context, name string, args ...string) process.Result {
	if name == "amixer" {
		n := r.inFlight.Add(1)
		defer r.inFlight.Add(-1)
		for {
			p := r.peak.Load()
			if n <= p || r.peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(r.delay)
	}
	return r.inner.Run(ctx, name, args...)
}

func TestReadingsConcurrencyIsBounded(t *testing.T) {
	var aplay strings.Builder
	for card := 0; card < 6; card++ {
		fmt.Fprintf(&aplay, "card %d: X [X], device 0: Y [Y]\n", card)
	}
	runner := &slowRunner{
		inner: newScriptedRunner().on("aplay -l", succeeded(aplay.String())),
		delay: 5 * time.Millisecond,
	}
	svc := newTestService(t, runner, func(o *Options) { o.Concurrency = 2 })

	readings := svc.Readings(context.Background())
	if len(readings) != 6 {
		t.Fatalf("expected 6 readings, got %d", len(readings))
	}
	if peak := runner.peak.Load(); peak > 2 {
		t.Fatalf("peak concurrency %d exceeds limit 2", peak)
	}
}

type panicRunner struct{}

func (panicRunner) Run(_ context.Context, name string, _ ...string) process.Result {
	if name == "amixer" {
		panic("mixer exploded")
	}
	return succeeded("card 0: PCH [HDA Intel PCH], device 0: ALC892 Analog [ALC892 Analog]\n")
}

func TestSafeReadingsRecoversPanic(t *testing.T) {
	svc := newTestService(t, panicRunner{})

	out := svc.SafeReadings(context.Background())
	entry, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error entry, got %v", out)
	}
	if entry["error"] != "mixer exploded" {
		t.Fatalf("error = %v", entry["error"])
	}
}

func TestErrorMap(t *testing.T) {
	out := ErrorMap(errors.New("boom"))
	if out["error"].(map[string]any)["error"] != "boom" {
		t.Fatalf("ErrorMap() = %v", out)
	}
}
