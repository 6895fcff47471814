package audio

import (
	"regexp"
	"strings"
)

// DefaultControls is the control priority list used when none is configured.
var DefaultControls = []string{
	"Master",
	"PCM",
	"Speaker",
	"Headphone",
	"Line Out",
	"Front",
	"Rear",
	"USB",
	"Playback Volume",
}

// Discovery defaults.
const (
	DefaultRankedLimit   = 5
	DefaultFallbackLimit = 3
	DefaultConcurrency   = 4

	// FallbackControl is the mutation target when no control answers a probe.
	FallbackControl = "PCM"
)

var controlName = regexp.MustCompile(`name='([^']*)'`)

// ParseControls extracts control names from `amixer controls` output:
//
//	numid=3,iface=MIXER,name='Master Playback Volume'
//
// A non-empty line without a quoted name is kept verbatim.
func ParseControls(output string) []string {
	var controls []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matches := controlName.FindAllStringSubmatch(line, -1)
		if len(matches) == 0 {
			controls = append(controls, line)
			continue
		}
		for _, m := range matches {
			controls = append(controls, m[1])
		}
	}
	return controls
}

// RankCandidates returns, in listing order, up to limit controls whose name
// contains an entry of priority (case-sensitive). When nothing matches, or
// the listing is empty, the priority list itself is returned.
func RankCandidates(controls, priority []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultRankedLimit
	}

	var ranked []string
	for _, control := range controls {
		if len(ranked) == limit {
			break
		}
		if matchesAny(control, priority) {
			ranked = append(ranked, control)
		}
	}

	if len(ranked) == 0 {
		return append([]string(nil), priority...)
	}
	return ranked
}

func matchesAny(control string, priority []string) bool {
	for _, p := range priority {
		if p != "" && strings.Contains(control, p) {
			return true
		}
	}
	return false
}

// probeSpellings returns the full name and, if different, its first
// whitespace-delimited token. "PCM Playback Volume" yields both itself and "PCM".
func probeSpellings(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	fields := strings.Fields(name)
	if len(fields) > 1 {
		return []string{name, fields[0]}
	}
	return []string{name}
}
