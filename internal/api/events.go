package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/alsavolume/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of mixer changes, command failures, sound card hotplug and configuration reloads",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"volume-changed":    events.VolumeChangedEvent{},
		"command-failed":    events.CommandFailedEvent{},
		"sound-device":      events.SoundDeviceEvent{},
		"controls-reloaded": events.ControlsReloadedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 16)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.VolumeChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CommandFailedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.SoundDeviceEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.ControlsReloadedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Announce the current priority list so clients start in sync.
		if err := send.Data(events.ControlsReloadedEvent{
			Controls:  s.mixer.Controls(),
			Timestamp: timestamp(),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
