package models

import "timberprices.msstate.edu/internal/stumpage"

type VisitsModel struct {
	Count int64 `json:"count"`
}

// HealthModel reports what dataset is being served.
type HealthModel struct {
	Status       string           `json:"status"`
	Source       string           `json:"source"`
	Records      int              `json:"records"`
	LastUpdated  CurrentTimeModel `json:"lastUpdated"`
	FromSnapshot bool             `json:"fromSnapshot"`
	IsLocalFile  bool             `json:"isLocalFile"`
}

func NewHealthModel(status stumpage.Status) HealthModel {
	state := "ok"
	if status.FromSnapshot {
		state = "degraded"
	}
	if status.Records == 0 {
		state = "unavailable"
	}
	return HealthModel{
		Status:       state,
		Source:       status.Source,
		Records:      status.Records,
		LastUpdated:  NewCurrentTimeModel(status.LastUpdated),
		FromSnapshot: status.FromSnapshot,
		IsLocalFile:  status.IsLocalFile,
	}
}
