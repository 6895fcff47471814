// Package cmd holds the one-shot CLI subcommands.
package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/smazurov/alsavolume/internal/audio"
	"github.com/smazurov/alsavolume/internal/logging"
	"github.com/smazurov/alsavolume/internal/nats"
)

// Mixer is the part of the audio service the subcommands drive.
type Mixer interface {
	SafeReadings(ctx context.Context) map[string]any
	Execute(ctx context.Context, params audio.Params) audio.Result
}

// MixerProvider returns the service built from the parsed options.
// It is only called from Run, after option parsing has completed.
type MixerProvider func() Mixer

// openMixer returns a NATS client for a running server when url is set,
// otherwise the local service. The close func is never nil.
func openMixer(provider MixerProvider, url string) (Mixer, func(), error) {
	if url == "" {
		return provider(), func() {}, nil
	}
	client, err := nats.Dial(url, logging.GetLogger("nats"))
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// quietLogs keeps progress logs off stdout unless --verbose is set.
func quietLogs(verbose bool) {
	if verbose {
		return
	}
	logging.SetLevels(logging.Config{Level: "error"})
}
