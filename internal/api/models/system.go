package models

// ServiceStatus is the state of one sound server unit.
type ServiceStatus struct {
	Unit   string `json:"unit" example:"pipewire.service" doc:"systemd unit name"`
	Status string `json:"status" example:"active" doc:"Unit ActiveState"`
	Error  string `json:"error,omitempty" doc:"Why the state could not be read"`
}

// ServiceStatusData lists the managed units.
type ServiceStatusData struct {
	Services []ServiceStatus `json:"services" doc:"Managed sound server units"`
}

// ServiceStatusResponse wraps ServiceStatusData for API responses.
type ServiceStatusResponse struct {
	Body ServiceStatusData
}

// ServiceInput selects a managed unit.
type ServiceInput struct {
	Unit string `path:"unit" example:"pipewire.service" doc:"systemd unit name"`
}

// ServiceAction contains the result of a unit action.
type ServiceAction struct {
	Unit    string `json:"unit" example:"pipewire.service" doc:"systemd unit name"`
	Action  string `json:"action" example:"restart" doc:"Action performed"`
	Success bool   `json:"success" example:"true" doc:"Whether the action completed"`
}

// ServiceActionResponse wraps ServiceAction for API responses.
type ServiceActionResponse struct {
	Body ServiceAction
}
