package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

type sentRecord struct {
	message  string
	priority journal.Priority
	fields   map[string]string
}

func captureJournal(level slog.Level) (*JournalHandler, *[]sentRecord) {
	var sent []sentRecord
	h := NewJournalHandler(level)
	h.send = func(message string, priority journal.Priority, fields map[string]string) error {
		sent = append(sent, sentRecord{message, priority, fields})
		return nil
	}
	return h, &sent
}

func TestJournalHandlerMixerFields(t *testing.T) {
	h, sent := captureJournal(slog.LevelDebug)

	logger := slog.New(h).With("module", "audio")
	logger.Warn("Command failed", "command", "mute", "card", 1, "control", "Master", "error", errors.New("exit status 1"))

	if len(*sent) != 1 {
		t.Fatalf("sent %d records, want 1", len(*sent))
	}
	rec := (*sent)[0]
	if rec.message != "Command failed" || rec.priority != journal.PriWarning {
		t.Errorf("record = %q priority %d", rec.message, rec.priority)
	}

	want := map[string]string{
		"SYSLOG_IDENTIFIER":  "alsavolume",
		"ALSAVOLUME_MODULE":  "audio",
		"ALSAVOLUME_COMMAND": "mute",
		"ALSAVOLUME_CARD":    "1",
		"ALSAVOLUME_CONTROL": "Master",
		"ERROR":              "exit status 1",
	}
	for k, v := range want {
		if rec.fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, rec.fields[k], v)
		}
	}
}

func TestJournalHandlerGroupedAttributes(t *testing.T) {
	h, sent := captureJournal(slog.LevelDebug)

	slog.New(h).WithGroup("discovery").Debug("Control output not parseable",
		"card", 0, "elapsed", 1500*time.Millisecond, "line-count", 3)

	fields := (*sent)[0].fields
	if fields["DISCOVERY_CARD"] != "0" {
		t.Errorf("grouped card should keep its prefix, got %v", fields)
	}
	if _, ok := fields["ALSAVOLUME_CARD"]; ok {
		t.Error("grouped card must not map to ALSAVOLUME_CARD")
	}
	if fields["DISCOVERY_ELAPSED"] != "1.5s" {
		t.Errorf("DISCOVERY_ELAPSED = %q", fields["DISCOVERY_ELAPSED"])
	}
	if fields["DISCOVERY_LINE_COUNT"] != "3" {
		t.Errorf("DISCOVERY_LINE_COUNT = %q", fields["DISCOVERY_LINE_COUNT"])
	}
}

func TestJournalHandlerLevel(t *testing.T) {
	h, sent := captureJournal(slog.LevelInfo)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled at info level")
	}
	slog.New(h).Error("Readings failed")
	if (*sent)[0].priority != journal.PriErr {
		t.Errorf("priority = %d, want %d", (*sent)[0].priority, journal.PriErr)
	}
}

func TestJournalHandlerSendError(t *testing.T) {
	h := NewJournalHandler(slog.LevelInfo)
	h.send = func(string, journal.Priority, map[string]string) error {
		return errors.New("no socket")
	}
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "Set volume", 0)
	if err := h.Handle(context.Background(), r); err == nil {
		t.Error("expected send error")
	}
}

func TestJournalFieldName(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"volume"}, "VOLUME"},
		{[]string{"http", "status-code"}, "HTTP_STATUS_CODE"},
		{[]string{"_private"}, "PRIVATE"},
		{[]string{"2nd"}, "ND"},
		{[]string{"---"}, ""},
	}
	for _, tt := range tests {
		if got := journalFieldName(tt.parts); got != tt.want {
			t.Errorf("journalFieldName(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}
