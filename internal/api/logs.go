package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/alsavolume/internal/api/models"
	"github.com/smazurov/alsavolume/internal/events"
	"github.com/smazurov/alsavolume/internal/logging"
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Recent Logs",
		Description: "Return buffered log entries, oldest first",
		Tags:        []string{"logs"},
		Security:    withAuth(),
	}, func(_ context.Context, input *models.LogsInput) (*models.LogsResponse, error) {
		filter := logging.Filter{
			Level:   input.Level,
			Module:  input.Module,
			Control: input.Control,
			Limit:   input.Limit,
		}
		if input.Card >= 0 {
			card := input.Card
			filter.Card = &card
		}

		var entries []logging.LogEntry
		if buffer := logging.GetBuffer(); buffer != nil {
			entries = buffer.Query(filter)
		}

		out := make([]models.LogEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, models.LogEntry{
				Seq:        e.Seq,
				Timestamp:  e.Timestamp.Format(time.RFC3339Nano),
				Level:      e.Level,
				Module:     e.Module,
				Message:    e.Message,
				Card:       e.Card,
				Control:    e.Control,
				Attributes: e.Attributes,
			})
		}

		return &models.LogsResponse{
			Body: models.LogsData{Entries: out, Count: len(out)},
		}, nil
	})

	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs/stream",
		Summary:     "Log Stream",
		Description: "Real-time log streaming via Server-Sent Events. Sends historical logs first, then streams new logs.",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"message": events.LogEntryEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Subscribed before the replay; live entries already replayed are
		// skipped by sequence number.
		eventCh := make(chan any, 100)
		unsubscribe := events.SubscribeToChannel[events.LogEntryEvent](s.eventBus, eventCh)
		defer unsubscribe()

		var replayed uint64
		if buffer := logging.GetBuffer(); buffer != nil {
			for _, entry := range buffer.ReadAll() {
				if err := send.Data(LogEntryEvent(entry)); err != nil {
					return
				}
				replayed = entry.Seq
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if entry, ok := event.(events.LogEntryEvent); ok && entry.Seq != 0 && entry.Seq <= replayed {
					continue
				}
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

// LogEntryEvent converts a buffered entry into its event form.
func LogEntryEvent(entry logging.LogEntry) events.LogEntryEvent {
	return events.LogEntryEvent{
		Seq:        entry.Seq,
		Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
		Level:      entry.Level,
		Module:     entry.Module,
		Message:    entry.Message,
		Card:       entry.Card,
		Control:    entry.Control,
		Attributes: entry.Attributes,
	}
}
