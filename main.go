package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/alsavolume/cmd"
	"github.com/smazurov/alsavolume/internal/api"
	"github.com/smazurov/alsavolume/internal/audio"
	"github.com/smazurov/alsavolume/internal/config"
	"github.com/smazurov/alsavolume/internal/events"
	"github.com/smazurov/alsavolume/internal/hotplug"
	"github.com/smazurov/alsavolume/internal/logging"
	"github.com/smazurov/alsavolume/internal/metrics/exporters"
	"github.com/smazurov/alsavolume/internal/nats"
	"github.com/smazurov/alsavolume/internal/process"
	"github.com/smazurov/alsavolume/internal/systemd"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port       string `help:"Port to listen on" short:"p" default:":8095" toml:"server.port" env:"SERVER_PORT"`
	CORSOrigin string `help:"Allowed CORS origin" default:"*" toml:"server.cors_origin" env:"SERVER_CORS_ORIGIN"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Mixer settings
	MixerControls      string `help:"Comma-separated control priority list" default:"Master,PCM,Speaker,Headphone,Line Out,Front,Rear,USB,Playback Volume" toml:"mixer.controls" env:"MIXER_CONTROLS"`
	MixerRankedLimit   int    `help:"Max ranked controls probed per card" default:"5" toml:"mixer.ranked_limit" env:"MIXER_RANKED_LIMIT"`
	MixerFallbackLimit int    `help:"Max unranked controls probed per card" default:"3" toml:"mixer.fallback_limit" env:"MIXER_FALLBACK_LIMIT"`
	MixerProbeTimeout  string `help:"Timeout for each aplay/amixer invocation" default:"5s" toml:"mixer.probe_timeout" env:"MIXER_PROBE_TIMEOUT"`
	MixerToneTimeout   string `help:"Timeout for the speaker-test tone" default:"30s" toml:"mixer.tone_timeout" env:"MIXER_TONE_TIMEOUT"`
	MixerConcurrency   int    `help:"Cards probed in parallel during a reading" default:"4" toml:"mixer.concurrency" env:"MIXER_CONCURRENCY"`

	// External tools
	ToolsAplay       string `help:"aplay binary" default:"aplay" toml:"tools.aplay" env:"TOOLS_APLAY"`
	ToolsAmixer      string `help:"amixer binary" default:"amixer" toml:"tools.amixer" env:"TOOLS_AMIXER"`
	ToolsSpeakerTest string `help:"speaker-test binary" default:"speaker-test" toml:"tools.speaker_test" env:"TOOLS_SPEAKER_TEST"`

	// NATS settings
	NATSEnabled  bool   `help:"Serve mixer requests and events over NATS" default:"false" toml:"nats.enabled" env:"NATS_ENABLED"`
	NATSEmbedded bool   `help:"Run an embedded NATS server" default:"true" toml:"nats.embedded" env:"NATS_EMBEDDED"`
	NATSHost     string `help:"Embedded NATS server host" default:"127.0.0.1" toml:"nats.host" env:"NATS_HOST"`
	NATSPort     int    `help:"Embedded NATS server port" default:"4222" toml:"nats.port" env:"NATS_PORT"`
	NATSURL      string `help:"External NATS server URL, used when not embedded" name:"nats-url" default:"nats://127.0.0.1:4222" toml:"nats.url" env:"NATS_URL"`

	// Sound server units
	SystemdUnits   string `help:"Comma-separated sound server units that may be inspected and restarted" default:"pipewire.service,pipewire-pulse.service,wireplumber.service" toml:"systemd.units" env:"SYSTEMD_UNITS"`
	SystemdUserBus bool   `help:"Manage units on the user bus instead of the system bus" default:"true" toml:"systemd.user_bus" env:"SYSTEMD_USER_BUS"`

	// Features settings
	FeaturesHotplug     bool `help:"Publish sound card hotplug events" default:"true" toml:"features.hotplug_enabled" env:"FEATURES_HOTPLUG"`
	FeaturesMetrics     bool `help:"Serve Prometheus metrics on /metrics" default:"true" toml:"features.metrics_enabled" env:"FEATURES_METRICS"`
	FeaturesSystemd     bool `help:"Expose sound server unit status and restart" default:"false" toml:"features.systemd_enabled" env:"FEATURES_SYSTEMD"`
	FeaturesConfigWatch bool `help:"Reload mixer controls and log levels when the config file changes" default:"true" toml:"features.config_watch" env:"FEATURES_CONFIG_WATCH"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingAudio   string `help:"Audio logging level" default:"info" toml:"logging.audio" env:"LOGGING_AUDIO"`
	LoggingProcess string `help:"Process runner logging level" default:"info" toml:"logging.process" env:"LOGGING_PROCESS"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP    string `help:"HTTP access logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingHotplug string `help:"Hotplug logging level" default:"info" toml:"logging.hotplug" env:"LOGGING_HOTPLUG"`
	LoggingConfig  string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
	LoggingNATS    string `help:"NATS logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
	LoggingSystemd string `help:"Sound server unit control logging level" default:"info" toml:"logging.systemd" env:"LOGGING_SYSTEMD"`
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func newMixer(opts *Options, eventBus *events.Bus) *audio.Service {
	runner := process.NewExecRunner(parseDuration(opts.MixerProbeTimeout, process.DefaultTimeout), logging.GetLogger("process"))
	toneRunner := process.NewExecRunner(parseDuration(opts.MixerToneTimeout, 30*time.Second), logging.GetLogger("process"))

	return audio.NewService(audio.Options{
		Runner:     runner,
		ToneRunner: toneRunner,
		Logger:     logging.GetLogger("audio"),
		Events:     eventBus,
		Tools: audio.Tools{
			Aplay:       opts.ToolsAplay,
			Amixer:      opts.ToolsAmixer,
			SpeakerTest: opts.ToolsSpeakerTest,
		},
		Controls:      config.SplitList(opts.MixerControls),
		RankedLimit:   opts.MixerRankedLimit,
		FallbackLimit: opts.MixerFallbackLimit,
		Concurrency:   opts.MixerConcurrency,
	})
}

// applyRuntime applies a reloaded config file. Controls set on the command
// line or in the environment stay in place; a file without mixer.controls
// restores the default list.
func applyRuntime(rt config.Runtime, mixer *audio.Service, publisher audio.Publisher, logger *slog.Logger, controlsPinned bool) {
	logging.SetLevels(rt.Logging)
	if controlsPinned {
		logger.Debug("Mixer controls pinned, ignoring config file list")
		return
	}
	mixer.SetControls(rt.Controls)
	logger.Info("Mixer controls reloaded", "controls", mixer.Controls())
	if publisher != nil {
		publisher.Publish(events.ControlsReloadedEvent{
			Controls:  mixer.Controls(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func main() {
	var mixer *audio.Service

	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"audio":   opts.LoggingAudio,
				"process": opts.LoggingProcess,
				"api":     opts.LoggingAPI,
				"http":    opts.LoggingHTTP,
				"hotplug": opts.LoggingHotplug,
				"config":  opts.LoggingConfig,
				"nats":    opts.LoggingNATS,
				"systemd": opts.LoggingSystemd,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		eventBus := events.New()
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(api.LogEntryEvent(entry))
		})

		mixer = newMixer(opts, eventBus)

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			CORSOrigin:   opts.CORSOrigin,
			Mixer:        mixer,
			EventBus:     eventBus,
		}
		if opts.FeaturesMetrics {
			apiOpts.PrometheusHandler = exporters.HTTPHandler()
		}

		var services *systemd.Manager
		if opts.FeaturesSystemd {
			var err error
			services, err = systemd.NewManager(context.Background(), config.SplitList(opts.SystemdUnits), !opts.SystemdUserBus, logging.GetLogger("systemd"))
			if err != nil {
				logger.Warn("Sound server unit control unavailable", "error", err)
			} else {
				apiOpts.Services = services
			}
		}

		server := api.NewServer(apiOpts)

		var watcher *config.Watcher[config.Runtime]
		if opts.FeaturesConfigWatch && opts.Config != "" {
			watcher = config.NewConfigWatcher(opts.Config, config.LoadRuntime, logging.GetLogger("config"))
			controlsPinned := config.Pinned(opts, cli.Root(), "MixerControls")
			watcher.OnReload(func(rt config.Runtime) {
				applyRuntime(rt, mixer, eventBus, logger, controlsPinned)
			})
		}

		var natsServer *nats.Server
		var natsBridge *nats.Bridge

		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			if opts.NATSEnabled {
				natsURL := opts.NATSURL
				if opts.NATSEmbedded {
					natsServer = nats.NewServer(nats.ServerOptions{
						Host:   opts.NATSHost,
						Port:   opts.NATSPort,
						Debug:  strings.EqualFold(opts.LoggingNATS, "debug"),
						Logger: logging.GetLogger("nats"),
					})
					if startErr := natsServer.Start(); startErr != nil {
						logger.Error("Failed to start NATS server", "error", startErr)
						os.Exit(1)
					}
					natsURL = natsServer.ClientURL()
				}

				natsBridge = nats.NewBridge(natsURL, mixer, eventBus, logging.GetLogger("nats"))
				if startErr := natsBridge.Start(); startErr != nil {
					logger.Warn("NATS bridge unavailable", "url", natsURL, "error", startErr)
					natsBridge = nil
				}
			}

			if watcher != nil {
				if startErr := watcher.Start(); startErr != nil {
					logger.Warn("Config watcher disabled", "path", opts.Config, "error", startErr)
				}
			}

			if opts.FeaturesHotplug {
				if watchErr := hotplug.Watch(ctx, eventBus, logging.GetLogger("hotplug")); watchErr != nil {
					logger.Warn("Hotplug monitoring unavailable", "error", watchErr)
				}
			}

			logger.Info("Starting HTTP server", "port", opts.Port, "controls", mixer.Controls())
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			cancel()
			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping config watcher", "error", stopErr)
				}
			}
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			if natsBridge != nil {
				natsBridge.Stop()
			}
			if natsServer != nil {
				natsServer.Stop()
			}
			if services != nil {
				services.Close()
			}
		})
	})

	provider := func() cmd.Mixer { return mixer }
	cli.Root().AddCommand(cmd.CreateReadingsCmd(provider))
	cli.Root().AddCommand(cmd.CreateCommandCmd(provider))
	cli.Root().AddCommand(cmd.CreateUpdateCmd())

	cli.Run()
}
