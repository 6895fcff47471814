package audio

import (
	"context"
	"strconv"

	"github.com/smazurov/alsavolume/internal/metrics"
	"github.com/smazurov/alsavolume/internal/process"
)

// Discover finds the control that carries playback volume and mute on card
// and returns its reading. Ranked candidates from `amixer controls` are
// probed first, then a bounded number of unranked controls. Unavailable is
// returned when nothing answers.
func (s *Service) Discover(ctx context.Context, card int) VolumeReading {
	priority := s.Controls()
	controls := s.listControls(ctx, card)
	ranked := RankCandidates(controls, priority, s.rankedLimit)

	p := &probePass{svc: s, card: card, tried: make(map[string]bool)}

	for _, candidate := range ranked {
		if reading, ok := p.tryCandidate(ctx, candidate); ok {
			return reading
		}
		if ctx.Err() != nil {
			return Unavailable
		}
	}

	remaining := s.fallbackLimit
	for _, control := range controls {
		if remaining == 0 || ctx.Err() != nil {
			break
		}
		if p.tried[control] {
			continue
		}
		remaining--
		if reading, ok := p.tryCandidate(ctx, control); ok {
			s.logger.Debug("Resolved control from unranked fallback", "card", card, "control", reading.Control)
			return reading
		}
	}

	s.logger.Debug("No usable mixer control", "card", card, "probes", len(p.tried))
	return Unavailable
}

// ResolveControlName probes the priority list literally, without listing
// controls first, and returns the first spelling that yields a reading.
// FallbackControl is returned when every probe fails, so mutations always
// target some control.
func (s *Service) ResolveControlName(ctx context.Context, card int) string {
	p := &probePass{svc: s, card: card, tried: make(map[string]bool)}
	for _, candidate := range s.Controls() {
		if reading, ok := p.tryCandidate(ctx, candidate); ok {
			return reading.Control
		}
	}

	s.logger.Debug("Falling back to default control", "card", card, "control", FallbackControl)
	return FallbackControl
}

func (s *Service) listControls(ctx context.Context, card int) []string {
	res := s.runner.Run(ctx, s.tools.Amixer, "-c", strconv.Itoa(card), "controls")
	if !res.OK() {
		s.logProbeFailure("amixer controls failed", card, "", res)
		return nil
	}
	return ParseControls(res.Stdout)
}

// probePass tracks the spellings already probed on one card so that no
// spelling is queried twice within a single resolution.
type probePass struct {
	svc   *Service
	card  int
	tried map[string]bool
}

func (p *probePass) tryCandidate(ctx context.Context, candidate string) (VolumeReading, bool) {
	for _, spelling := range probeSpellings(candidate) {
		if p.tried[spelling] {
			continue
		}
		p.tried[spelling] = true

		if reading, ok := p.svc.probe(ctx, p.card, spelling); ok {
			return reading, true
		}
		if ctx.Err() != nil {
			return Unavailable, false
		}
	}
	return Unavailable, false
}

// probe runs `amixer -c <card> get <control>`. It succeeds only when the
// command exits cleanly and its output carries both a percent and a switch token.
func (s *Service) probe(ctx context.Context, card int, control string) (VolumeReading, bool) {
	res := s.runner.Run(ctx, s.tools.Amixer, "-c", strconv.Itoa(card), "get", control)
	if !res.OK() {
		metrics.ObserveProbe(res.Failure.String(), res.Duration)
		s.logProbeFailure("Probe failed", card, control, res)
		return Unavailable, false
	}

	reading, ok := ParseReading(res.Stdout)
	if !ok {
		metrics.ObserveProbe(metrics.ResultParseFailure, res.Duration)
		s.logger.Debug("Probe output not parseable", "card", card, "control", control)
		return Unavailable, false
	}

	metrics.ObserveProbe(metrics.ResultOK, res.Duration)
	return VolumeReading{
		Control:   control,
		Volume:    reading.Volume,
		Muted:     reading.Muted,
		Available: true,
	}, true
}

// logProbeFailure logs expected exit failures at debug, the rest at warn.
func (s *Service) logProbeFailure(msg string, card int, control string, res process.Result) {
	args := []any{"card", card, "failure", res.Failure.String(), "error", res.ErrorText()}
	if control != "" {
		args = append(args, "control", control)
	}
	if res.Failure == process.FailureExit {
		s.logger.Debug(msg, args...)
		return
	}
	s.logger.Warn(msg, args...)
}
