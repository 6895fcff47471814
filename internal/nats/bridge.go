package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/smazurov/alsavolume/internal/audio"
	"github.com/smazurov/alsavolume/internal/events"
)

// DefaultRequestTimeout bounds one command or readings request served by
// the bridge. A play_test tone may take most of it.
const DefaultRequestTimeout = 30 * time.Second

// Mixer is the part of the audio service served over NATS.
type Mixer interface {
	SafeReadings(ctx context.Context) map[string]any
	Execute(ctx context.Context, params audio.Params) audio.Result
}

// Bridge serves mixer requests from NATS and forwards event bus traffic to
// NATS subjects.
type Bridge struct {
	url      string
	mixer    Mixer
	eventBus *events.Bus
	timeout  time.Duration
	conn     *nats.Conn
	subs     []*nats.Subscription
	unsubs   []func()
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewBridge creates a new NATS bridge for mixer.
func NewBridge(url string, mixer Mixer, eventBus *events.Bus, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bridge{
		url:      url,
		mixer:    mixer,
		eventBus: eventBus,
		timeout:  DefaultRequestTimeout,
		logger:   logger.With("component", "nats-bridge"),
	}
}

// Start connects to NATS, subscribes to the request subjects and starts
// forwarding events.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := nats.Connect(b.url,
		nats.Name("alsavolume-bridge"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				b.logger.Warn("NATS bridge disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			b.logger.Info("NATS bridge reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	b.conn = conn
	b.logger.Info("NATS bridge connected", "url", b.url)

	commandSub, err := conn.Subscribe(SubjectCommand, b.handleCommand)
	if err != nil {
		b.cleanup()
		return err
	}
	b.subs = append(b.subs, commandSub)

	readingsSub, err := conn.Subscribe(SubjectReadings, b.handleReadings)
	if err != nil {
		b.cleanup()
		return err
	}
	b.subs = append(b.subs, readingsSub)

	if b.eventBus != nil {
		b.unsubs = append(b.unsubs,
			b.eventBus.Subscribe(func(e events.VolumeChangedEvent) { b.forward(e) }),
			b.eventBus.Subscribe(func(e events.CommandFailedEvent) { b.forward(e) }),
			b.eventBus.Subscribe(func(e events.SoundDeviceEvent) { b.forward(e) }),
			b.eventBus.Subscribe(func(e events.ControlsReloadedEvent) { b.forward(e) }),
		)
	}

	b.logger.Info("NATS bridge subscribed", "command", SubjectCommand, "readings", SubjectReadings)
	return nil
}

// handleCommand runs one command and replies with its result.
func (b *Bridge) handleCommand(msg *nats.Msg) {
	params, err := UnmarshalCommand(msg.Data)
	var res audio.Result
	if err != nil {
		res = audio.Result{Error: err.Error()}
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		res = b.mixer.Execute(ctx, params)
		cancel()
	}

	b.logger.Debug("Served command request", "command", params.Command(), "success", res.OK())
	b.respond(msg, res)
}

// handleReadings replies with the readings of every device.
func (b *Bridge) handleReadings(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	b.respond(msg, b.mixer.SafeReadings(ctx))
}

func (b *Bridge) respond(msg *nats.Msg, v any) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		b.logger.Warn("Failed to marshal reply", "error", err, "subject", msg.Subject)
		return
	}
	if err := msg.Respond(data); err != nil {
		b.logger.Warn("Failed to send reply", "error", err, "subject", msg.Subject)
	}
}

// forward publishes ev on its events subject.
func (b *Bridge) forward(ev events.Event) {
	kind, ok := eventKind(ev)
	if !ok {
		return
	}

	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		b.logger.Warn("Failed to marshal event", "error", err, "kind", kind)
		return
	}
	if err := conn.Publish(SubjectEvent(kind), data); err != nil {
		b.logger.Warn("Failed to publish event", "error", err, "kind", kind)
	}
}

// Stop unsubscribes and closes the connection.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleanup()
	b.logger.Info("NATS bridge stopped")
}

// cleanup releases subscriptions and the connection (must hold lock).
func (b *Bridge) cleanup() {
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil

	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}
