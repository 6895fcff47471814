package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/alsavolume/internal/logging"
)

// Runtime holds the subset of the config file that can change while the
// server is running.
type Runtime struct {
	// Controls is the mixer control priority list. Empty means "keep current".
	Controls []string
	Logging  logging.Config
}

type runtimeFile struct {
	Mixer struct {
		Controls any `toml:"controls"`
	} `toml:"mixer"`
	Logging map[string]any `toml:"logging"`
}

// LoadRuntime reads the reloadable sections of a TOML config file.
func LoadRuntime(path string) (Runtime, error) {
	rt := Runtime{
		Logging: logging.Config{
			Level:   "info",
			Format:  "text",
			Modules: make(map[string]string),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rt, fmt.Errorf("failed to read config: %w", err)
	}

	var raw runtimeFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return rt, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	controls, err := controlList(raw.Mixer.Controls)
	if err != nil {
		return rt, err
	}
	rt.Controls = controls

	// level and format are global, remaining string keys are module levels
	for key, value := range raw.Logging {
		s, ok := value.(string)
		if !ok {
			continue
		}
		switch key {
		case "level":
			rt.Logging.Level = s
		case "format":
			rt.Logging.Format = s
		default:
			rt.Logging.Modules[key] = s
		}
	}

	return rt, nil
}

// controlList accepts mixer.controls as a TOML array or as the same
// comma-separated string LoadConfig and the environment take.
func controlList(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return SplitList(v), nil
	case []any:
		var names []string
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("mixer.controls: expected strings, got %T", item)
			}
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		return names, nil
	default:
		return nil, fmt.Errorf("mixer.controls: expected array or string, got %T", value)
	}
}
