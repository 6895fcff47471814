// Package systemd reports on and restarts the sound server units the mixer
// depends on.
package systemd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/coreos/go-systemd/v22/dbus"
)

// DefaultUnits are the PipeWire units managed when none are configured.
var DefaultUnits = []string{"pipewire.service", "pipewire-pulse.service", "wireplumber.service"}

// ErrUnitNotManaged is returned for units outside the configured list.
var ErrUnitNotManaged = errors.New("unit is not managed")

// unitConn is the part of *dbus.Conn the manager uses.
type unitConn interface {
	GetUnitPropertyContext(ctx context.Context, unit string, propertyName string) (*dbus.Property, error)
	RestartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	Close()
}

// UnitStatus is the ActiveState of one unit, or the error reading it.
type UnitStatus struct {
	Unit        string
	ActiveState string
	Err         error
}

// Manager handles systemd unit lifecycle operations via D-Bus.
type Manager struct {
	conn   unitConn
	units  []string
	logger *slog.Logger
}

// NewManager connects to the user bus, or the system bus when system is
// set, and manages units. An empty list selects DefaultUnits.
func NewManager(ctx context.Context, units []string, system bool, logger *slog.Logger) (*Manager, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	if system {
		conn, err = dbus.NewSystemConnectionContext(ctx)
	} else {
		conn, err = dbus.NewUserConnectionContext(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd: %w", err)
	}
	return newManager(conn, units, logger), nil
}

func newManager(conn unitConn, units []string, logger *slog.Logger) *Manager {
	if len(units) == 0 {
		units = DefaultUnits
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{conn: conn, units: slices.Clone(units), logger: logger}
}

// Units returns the managed unit names.
func (m *Manager) Units() []string {
	return slices.Clone(m.units)
}

// Status retrieves the ActiveState property of a managed unit.
func (m *Manager) Status(ctx context.Context, unit string) (string, error) {
	if !slices.Contains(m.units, unit) {
		return "", fmt.Errorf("%s: %w", unit, ErrUnitNotManaged)
	}
	prop, err := m.conn.GetUnitPropertyContext(ctx, unit, "ActiveState")
	if err != nil {
		return "", err
	}
	state, ok := prop.Value.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected ActiveState value %s", prop.Value.String())
	}
	return state, nil
}

// Statuses reports every managed unit in configured order.
func (m *Manager) Statuses(ctx context.Context) []UnitStatus {
	out := make([]UnitStatus, 0, len(m.units))
	for _, unit := range m.units {
		state, err := m.Status(ctx, unit)
		out = append(out, UnitStatus{Unit: unit, ActiveState: state, Err: err})
	}
	return out
}

// Restart restarts a managed unit using the replace mode and waits for the
// job to finish.
func (m *Manager) Restart(ctx context.Context, unit string) error {
	if !slices.Contains(m.units, unit) {
		return fmt.Errorf("%s: %w", unit, ErrUnitNotManaged)
	}

	done := make(chan string, 1)
	if _, err := m.conn.RestartUnitContext(ctx, unit, "replace", done); err != nil {
		return err
	}

	select {
	case result := <-done:
		if result != "done" {
			return fmt.Errorf("restart %s: job %s", unit, result)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info("Restarted unit", "unit", unit)
	return nil
}

// Close cleanly closes the D-Bus connection.
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}
