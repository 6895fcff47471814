package audio

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/smazurov/alsavolume/internal/metrics"
)

// DeviceReading pairs an enumerated device with its card's volume state.
type DeviceReading struct {
	Device
	Reading VolumeReading
}

// Readings enumerates devices and resolves one control per distinct card.
// Cards are probed concurrently, bounded by the configured concurrency;
// devices on the same card share that card's result. Order follows aplay.
func (s *Service) Readings(ctx context.Context) []DeviceReading {
	devices := s.ListDevices(ctx)
	if len(devices) == 0 {
		metrics.SetDevices(0, 0)
		return nil
	}

	var cards []int
	seen := make(map[int]bool)
	for _, d := range devices {
		if !seen[d.CardNumber] {
			seen[d.CardNumber] = true
			cards = append(cards, d.CardNumber)
		}
	}

	resolved := make([]VolumeReading, len(cards))
	sem := make(chan struct{}, s.concurrency)
	var (
		wg       sync.WaitGroup
		panicMu  sync.Mutex
		panicked any
	)
	for i, card := range cards {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Re-raised on the caller's goroutine so SafeReadings can recover it.
			defer func() {
				if r := recover(); r != nil {
					panicMu.Lock()
					if panicked == nil {
						panicked = r
					}
					panicMu.Unlock()
				}
			}()
			sem <- struct{}{}
			defer func() { <-sem }()
			resolved[i] = s.Discover(ctx, card)
		}()
	}
	wg.Wait()
	if panicked != nil {
		panic(panicked)
	}

	byCard := make(map[int]VolumeReading, len(cards))
	for i, card := range cards {
		byCard[card] = resolved[i]
	}

	readings := make([]DeviceReading, 0, len(devices))
	unavailable := 0
	for _, d := range devices {
		r := byCard[d.CardNumber]
		if !r.Available {
			unavailable++
		}
		readings = append(readings, DeviceReading{Device: d, Reading: r})
	}

	metrics.SetDevices(len(readings), unavailable)
	s.logger.Debug("Collected readings", "devices", len(readings), "cards", len(cards), "unavailable", unavailable)
	return readings
}

// ReadingsMap renders readings keyed by card_<card>_device_<device>.
// An empty batch yields a single no_devices entry.
func ReadingsMap(readings []DeviceReading) map[string]any {
	if len(readings) == 0 {
		return map[string]any{
			"no_devices": map[string]any{"message": "No audio devices found"},
		}
	}

	out := make(map[string]any, len(readings))
	for _, r := range readings {
		out[r.Key()] = map[string]any{
			"card":           r.CardNumber,
			"card_name":      r.CardName,
			"device":         r.DeviceNumber,
			"device_name":    r.DeviceName,
			"device_desc":    r.DeviceDesc,
			"volume_percent": r.Reading.VolumeValue(),
			"muted":          r.Reading.MutedValue(),
			"control":        r.Reading.ControlValue(),
		}
	}
	return out
}

// ErrorMap renders an unexpected failure as a single error entry.
func ErrorMap(err error) map[string]any {
	return map[string]any{
		"error": map[string]any{"error": err.Error()},
	}
}

// SafeReadings returns the rendered readings, converting a panic anywhere
// in the pipeline into an error entry.
func (s *Service) SafeReadings(ctx context.Context) (out map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic while collecting readings", "panic", r, "stack", string(debug.Stack()))
			out = ErrorMap(fmt.Errorf("%v", r))
		}
	}()
	return ReadingsMap(s.Readings(ctx))
}
