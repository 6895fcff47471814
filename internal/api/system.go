package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/alsavolume/internal/api/models"
	"github.com/smazurov/alsavolume/internal/systemd"
)

// ServiceManager controls the sound server units.
type ServiceManager interface {
	Statuses(ctx context.Context) []systemd.UnitStatus
	Restart(ctx context.Context, unit string) error
}

func (s *Server) registerSystemRoutes() {
	if s.options.Services == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "list-audio-services",
		Method:      http.MethodGet,
		Path:        "/api/system/services",
		Summary:     "Sound Server Status",
		Description: "Get the systemd state of the managed sound server units",
		Tags:        []string{"system"},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.ServiceStatusResponse, error) {
		statuses := s.options.Services.Statuses(ctx)

		services := make([]models.ServiceStatus, len(statuses))
		for i, st := range statuses {
			services[i] = models.ServiceStatus{Unit: st.Unit, Status: st.ActiveState}
			if st.Err != nil {
				services[i].Error = st.Err.Error()
			}
		}
		return &models.ServiceStatusResponse{
			Body: models.ServiceStatusData{Services: services},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "restart-audio-service",
		Method:      http.MethodPost,
		Path:        "/api/system/services/{unit}/restart",
		Summary:     "Restart Sound Server Unit",
		Description: "Restart one managed sound server unit and wait for the job to finish",
		Tags:        []string{"system"},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.ServiceInput) (*models.ServiceActionResponse, error) {
		err := s.options.Services.Restart(ctx, input.Unit)
		if errors.Is(err, systemd.ErrUnitNotManaged) {
			return nil, huma.Error404NotFound("Unit is not managed", err)
		}
		if err != nil {
			s.logger.Error("Failed to restart unit", "unit", input.Unit, "error", err)
			return nil, huma.Error500InternalServerError("Failed to restart unit", err)
		}
		return &models.ServiceActionResponse{
			Body: models.ServiceAction{
				Unit:    input.Unit,
				Action:  "restart",
				Success: true,
			},
		}, nil
	})
}
