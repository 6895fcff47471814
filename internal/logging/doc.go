// Package logging provides structured logging with per-module log levels.
//
// Records go to stdout (text or json), to the systemd journal when journald
// is reachable, and to an in-memory ring buffer that backs GET /api/logs.
//
// Initialize once at startup, then ask for a module logger:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"audio": "debug"},
//	})
//
//	logger := logging.GetLogger("audio").With("card", 0)
//	logger.Debug("Probe failed", "control", "Master")
//
// Mixer probes that fail for ordinary reasons (unknown control name,
// unparseable output) are logged at debug, so enable debug on the "audio"
// module when a card reports N/A:
//
//	journalctl -t alsavolume ALSAVOLUME_MODULE=audio
//	journalctl -t alsavolume ALSAVOLUME_CARD=1 -p debug
//
// The same card and control attributes are kept on buffered entries, so
// GET /api/logs?card=1&control=Master narrows history the same way.
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	audio = "debug"
//	process = "warn"
package logging
