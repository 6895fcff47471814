package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.2.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"a1b2c3d" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go toolchain version"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target OS and architecture"`
}

type VersionResponse struct {
	Body VersionData
}

// Log models
type LogEntry struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Buffer sequence number"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"audio" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Card       *int           `json:"card,omitempty" example:"1" doc:"Sound card the entry concerns"`
	Control    string         `json:"control,omitempty" example:"Master" doc:"Mixer control the entry concerns"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

type LogsData struct {
	Entries []LogEntry `json:"entries" doc:"Buffered log entries, oldest first"`
	Count   int        `json:"count" example:"120" doc:"Number of entries returned"`
}

type LogsInput struct {
	Limit   int    `query:"limit" minimum:"0" maximum:"1000" default:"0" doc:"Return at most this many of the newest entries (0 for all)"`
	Level   string `query:"level" example:"warn" doc:"Only return entries at this level (debug, info, warn, error)"`
	Module  string `query:"module" example:"audio" doc:"Only return entries from this module"`
	Card    int    `query:"card" minimum:"-1" default:"-1" doc:"Only return entries about this sound card (-1 for all)"`
	Control string `query:"control" example:"Master" doc:"Only return entries about this mixer control"`
}

type LogsResponse struct {
	Body LogsData
}
