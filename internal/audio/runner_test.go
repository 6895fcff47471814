package audio

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/smazurov/alsavolume/internal/events"
	"github.com/smazurov/alsavolume/internal/process"
)

// scriptedRunner answers invocations from a table keyed by the full
// command line. Unscripted invocations exit 1.
type scriptedRunner struct {
	mu      sync.Mutex
	replies map[string]process.Result
	calls   []string
	onRun   func(cmdline string)
}

func newScriptedRunner() *scriptedRunner {
	return &scriptedRunner{replies: make(map[string]process.Result)}
}

func (r *scriptedRunner) on(cmdline string, res process.Result) *scriptedRunner {
	r.replies[cmdline] = res
	return r
}

func (r *scriptedRunner) Run(_ context.Context, name string, args ...string) process.Result {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	r.mu.Lock()
	r.calls = append(r.calls, cmdline)
	res, ok := r.replies[cmdline]
	hook := r.onRun
	r.mu.Unlock()

	if hook != nil {
		hook(cmdline)
	}
	if !ok {
		return exited("amixer: Unable to find simple control")
	}
	return res
}

func (r *scriptedRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *scriptedRunner) called(cmdline string) bool {
	for _, c := range r.Calls() {
		if c == cmdline {
			return true
		}
	}
	return false
}

func succeeded(stdout string) process.Result {
	return process.Result{Stdout: stdout}
}

func exited(stderr string) process.Result {
	return process.Result{ExitCode: 1, Stderr: stderr + "\n", Failure: process.FailureExit}
}

func timedOut() process.Result {
	return process.Result{ExitCode: -1, Failure: process.FailureTimeout, Err: context.DeadlineExceeded}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func newTestService(t *testing.T, runner process.Runner, opts ...func(*Options)) *Service {
	t.Helper()
	o := Options{
		Runner: runner,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return NewService(o)
}

// masterReply is a typical two-channel `amixer get Master` reply.
const masterReply = `Simple mixer control 'Master',0
  Capabilities: pvolume pswitch pswitch-joined
  Playback channels: Front Left - Front Right
  Limits: Playback 0 - 87
  Mono:
  Front Left: Playback 48 [55%] [-29.25dB] [on]
  Front Right: Playback 48 [55%] [-29.25dB] [on]
`

const aplayReply = `**** List of PLAYBACK Hardware Devices ****
card 0: PCH [HDA Intel PCH], device 0: ALC892 Analog [ALC892 Analog]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
card 0: PCH [HDA Intel PCH], device 3: HDMI 0 [HDMI 0]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
card 1: Device [USB Audio Device], device 0: USB Audio [USB Audio]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
`
