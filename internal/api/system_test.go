package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/smazurov/alsavolume/internal/systemd"
)

type mockServices struct {
	restarted []string
	err       error
}

func (m *mockServices) Statuses(_ context.Context) []systemd.UnitStatus {
	return []systemd.UnitStatus{
		{Unit: "pipewire.service", ActiveState: "active"},
		{Unit: "wireplumber.service", Err: errors.New("no such unit")},
	}
}

func (m *mockServices) Restart(_ context.Context, unit string) error {
	if unit != "pipewire.service" {
		return fmt.Errorf("%s: %w", unit, systemd.ErrUnitNotManaged)
	}
	m.restarted = append(m.restarted, unit)
	return m.err
}

func withServices(svc ServiceManager) func(*Options) {
	return func(o *Options) { o.Services = svc }
}

func TestSystemRoutesAbsentWithoutManager(t *testing.T) {
	s := newTestServer(t, &mockMixer{})
	rec := do(t, s, http.MethodGet, "/api/system/services", "", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if _, ok := s.GetAPI().OpenAPI().Paths["/api/system/services"]; ok {
		t.Fatal("OpenAPI document lists /api/system/services without a manager")
	}
}

func TestListServices(t *testing.T) {
	s := newTestServer(t, &mockMixer{}, withServices(&mockServices{}))

	rec := do(t, s, http.MethodGet, "/api/system/services", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Services []struct {
			Unit   string `json:"unit"`
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"services"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Services) != 2 {
		t.Fatalf("services = %+v", body.Services)
	}
	if body.Services[0].Status != "active" || body.Services[1].Error != "no such unit" {
		t.Fatalf("services = %+v", body.Services)
	}
}

func TestListServicesRequiresAuth(t *testing.T) {
	s := newTestServer(t, &mockMixer{}, withServices(&mockServices{}))
	rec := do(t, s, http.MethodGet, "/api/system/services", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRestartService(t *testing.T) {
	svc := &mockServices{}
	s := newTestServer(t, &mockMixer{}, withServices(svc))

	rec := do(t, s, http.MethodPost, "/api/system/services/pipewire.service/restart", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(svc.restarted) != 1 {
		t.Fatalf("restarted = %v", svc.restarted)
	}
}

func TestRestartUnmanagedService(t *testing.T) {
	s := newTestServer(t, &mockMixer{}, withServices(&mockServices{}))
	rec := do(t, s, http.MethodPost, "/api/system/services/sshd.service/restart", "", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRestartServiceFailure(t *testing.T) {
	s := newTestServer(t, &mockMixer{}, withServices(&mockServices{err: errors.New("job failed")}))
	rec := do(t, s, http.MethodPost, "/api/system/services/pipewire.service/restart", "", true)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
