package hotplug

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/smazurov/alsavolume/internal/events"
)

// Publisher receives sound device events.
type Publisher interface {
	Publish(ev events.Event)
}

// Watch opens a Monitor and publishes a SoundDeviceEvent for every card
// level uevent until ctx is done. It returns once the monitor is running.
func Watch(ctx context.Context, pub Publisher, logger *slog.Logger) error {
	m, err := NewMonitor()
	if err != nil {
		return err
	}

	raw := make(chan Event, 16)
	go func() {
		defer func() { _ = m.Close() }()
		if runErr := m.Run(ctx, raw); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("Hotplug monitor stopped", "error", runErr)
		}
	}()
	go Forward(raw, pub, logger)

	logger.Info("Watching for sound card hotplug events")
	return nil
}

// Forward converts card-level uevents from in and publishes them until in
// is closed. Per-node events (pcmC0D0p, controlC0, ...) are dropped.
func Forward(in <-chan Event, pub Publisher, logger *slog.Logger) {
	for ev := range in {
		if !ev.IsCard() {
			continue
		}

		out := events.SoundDeviceEvent{
			Action:    ev.Action,
			DevName:   ev.DevName,
			DevPath:   ev.DevPath,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if card, ok := ev.Card(); ok {
			out.Card = &card
		}

		logger.Info("Sound card event", "action", ev.Action, "path", ev.DevPath)
		pub.Publish(out)
	}
}
