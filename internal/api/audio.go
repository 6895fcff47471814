package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/alsavolume/internal/api/models"
	"github.com/smazurov/alsavolume/internal/audio"
)

func (s *Server) registerAudioRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-readings",
		Method:      http.MethodGet,
		Path:        "/api/readings",
		Summary:     "Volume Readings",
		Description: "Enumerate playback devices and report volume, mute state and the resolved mixer " +
			"control for each. Unresolvable fields are reported as N/A.",
		Tags:     []string{"audio"},
		Security: withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.ReadingsResponse, error) {
		return &models.ReadingsResponse{Body: s.mixer.SafeReadings(ctx)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-audio-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices/audio",
		Summary:     "List Audio Devices",
		Description: "List playback devices as reported by aplay -l",
		Tags:        []string{"devices"},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.AudioDevicesResponse, error) {
		devices := s.mixer.ListDevices(ctx)

		apiDevices := make([]models.AudioDevice, len(devices))
		for i, d := range devices {
			apiDevices[i] = models.AudioDevice{
				Card:       d.CardNumber,
				CardName:   d.CardName,
				Device:     d.DeviceNumber,
				DeviceName: d.DeviceName,
				DeviceDesc: d.DeviceDesc,
				ALSADevice: d.ALSADevice(),
			}
		}

		return &models.AudioDevicesResponse{
			Body: models.AudioDevicesData{
				Devices: apiDevices,
				Count:   len(apiDevices),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-card-control",
		Method:      http.MethodGet,
		Path:        "/api/cards/{card}/control",
		Summary:     "Resolve Card Control",
		Description: "Run full control discovery on one card and report the control that carries playback volume",
		Tags:        []string{"audio"},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.CardInput) (*models.CardControlResponse, error) {
		reading := s.mixer.Discover(ctx, input.Card)

		data := models.CardControlData{
			Card:      input.Card,
			Available: reading.Available,
			Control:   reading.ControlValue(),
		}
		if reading.Available {
			data.VolumePercent = &reading.Volume
			data.Muted = &reading.Muted
		}
		return &models.CardControlResponse{Body: data}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-mixer-controls",
		Method:      http.MethodGet,
		Path:        "/api/mixer/controls",
		Summary:     "Control Priority List",
		Description: "Control names used to rank mixer controls during discovery",
		Tags:        []string{"audio"},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.ControlsResponse, error) {
		return &models.ControlsResponse{
			Body: models.ControlsData{Controls: s.mixer.Controls()},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "run-command",
		Method:      http.MethodPost,
		Path:        "/api/command",
		Summary:     "Run Mixer Command",
		Description: "Run set_volume, mute, unmute, toggle_mute or play_test. Validation and tool failures " +
			"are reported in the body as {\"error\": ...}.",
		Tags:     []string{"audio"},
		Security: withAuth(),
	}, func(ctx context.Context, input *models.CommandRequest) (*models.CommandResponse, error) {
		result := s.mixer.Execute(ctx, audio.Params(input.Body))
		return &models.CommandResponse{Body: result.Map()}, nil
	})
}
