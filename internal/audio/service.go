// Package audio resolves ALSA playback devices, their volume controls and
// their volume/mute state by driving aplay, amixer and speaker-test.
//
// Nothing is cached between calls: every reading re-enumerates devices and
// re-probes controls, so hot-plugged cards are always reflected.
package audio

import (
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/smazurov/alsavolume/internal/events"
	"github.com/smazurov/alsavolume/internal/process"
)

// Tools names the external binaries. Empty fields select the defaults.
type Tools struct {
	Aplay       string
	Amixer      string
	SpeakerTest string
}

func (t Tools) withDefaults() Tools {
	if t.Aplay == "" {
		t.Aplay = "aplay"
	}
	if t.Amixer == "" {
		t.Amixer = "amixer"
	}
	if t.SpeakerTest == "" {
		t.SpeakerTest = "speaker-test"
	}
	return t
}

// Publisher receives events about mixer changes.
type Publisher interface {
	Publish(ev events.Event)
}

// Options configures a Service.
type Options struct {
	// Runner executes aplay and amixer.
	Runner process.Runner
	// ToneRunner executes speaker-test. Defaults to Runner.
	ToneRunner process.Runner
	Logger     *slog.Logger
	Events     Publisher
	Tools      Tools

	// Controls is the priority list used to rank discovered controls.
	Controls []string
	// RankedLimit caps how many discovered controls matching Controls are probed.
	RankedLimit int
	// FallbackLimit caps how many unranked controls are probed afterwards.
	FallbackLimit int
	// Concurrency bounds how many cards are probed at once during a reading.
	Concurrency int
}

// Service is safe for concurrent use; each call owns its own processes.
type Service struct {
	runner        process.Runner
	toneRunner    process.Runner
	logger        *slog.Logger
	events        Publisher
	tools         Tools
	rankedLimit   int
	fallbackLimit int
	concurrency   int
	controls      atomic.Pointer[[]string]
}

// NewService creates a Service. A nil Runner selects an ExecRunner with the
// default timeout.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runner := opts.Runner
	if runner == nil {
		runner = process.NewExecRunner(process.DefaultTimeout, logger)
	}
	toneRunner := opts.ToneRunner
	if toneRunner == nil {
		toneRunner = runner
	}

	s := &Service{
		runner:        runner,
		toneRunner:    toneRunner,
		logger:        logger,
		events:        opts.Events,
		tools:         opts.Tools.withDefaults(),
		rankedLimit:   positiveOr(opts.RankedLimit, DefaultRankedLimit),
		fallbackLimit: positiveOr(opts.FallbackLimit, DefaultFallbackLimit),
		concurrency:   positiveOr(opts.Concurrency, DefaultConcurrency),
	}
	s.SetControls(opts.Controls)
	return s
}

// Controls returns a copy of the current control priority list.
func (s *Service) Controls() []string {
	return slices.Clone(*s.controls.Load())
}

// SetControls replaces the control priority list. An empty list restores
// DefaultControls. Calls in flight keep the list they started with.
func (s *Service) SetControls(names []string) {
	list := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" {
			list = append(list, name)
		}
	}
	if len(list) == 0 {
		list = slices.Clone(DefaultControls)
	}
	s.controls.Store(&list)
}

func (s *Service) publish(ev events.Event) {
	if s.events != nil {
		s.events.Publish(ev)
	}
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
