//go:build !linux

package hotplug

import (
	"context"
	"errors"
)

// Monitor is unavailable off Linux.
type Monitor struct{}

// NewMonitor always fails off Linux.
func NewMonitor() (*Monitor, error) {
	return nil, errors.ErrUnsupported
}

// Close is a no-op.
func (m *Monitor) Close() error { return nil }

// Run closes out and returns errors.ErrUnsupported.
func (m *Monitor) Run(_ context.Context, out chan<- Event) error {
	close(out)
	return errors.ErrUnsupported
}
