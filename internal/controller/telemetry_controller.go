// Package controller exposes the telemetry read queries over HTTP for the
// dashboard.
package controller

import (
	"errors"
	"log"
	"net/http"

	"biorreator-telemetry/internal/models"
	"biorreator-telemetry/internal/service"
	"biorreator-telemetry/internal/utils"
)

// TelemetryController handles the dashboard query endpoints.
type TelemetryController struct {
	service *service.DataService
}

// NewTelemetryController creates a TelemetryController.
func NewTelemetryController(dataService *service.DataService) *TelemetryController {
	return &TelemetryController{service: dataService}
}

// HandleTimeSeries serves GET /telemetry/series?equipment=id1,id2.
func (c *TelemetryController) HandleTimeSeries(w http.ResponseWriter, r *http.Request) {
	equipment := r.URL.Query().Get("equipment")
	if equipment == "" {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMissingParameter,
			"equipment query parameter is required", nil, http.StatusBadRequest))
		return
	}

	rows, err := c.service.GetTimeSeries(r.Context(), equipment)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rows)
}

// HandleLatestValues serves GET /telemetry/latest?equipment=id1,id2&metric=ph.
func (c *TelemetryController) HandleLatestValues(w http.ResponseWriter, r *http.Request) {
	equipment := r.URL.Query().Get("equipment")
	if equipment == "" {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMissingParameter,
			"equipment query parameter is required", nil, http.StatusBadRequest))
		return
	}
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeMissingParameter,
			"metric query parameter is required", nil, http.StatusBadRequest))
		return
	}

	values, err := c.service.GetLatestValues(r.Context(), equipment, metric)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, values)
}

func respondServiceError(w http.ResponseWriter, err error) {
	var apiErr models.APIError
	if errors.As(err, &apiErr) {
		utils.RespondWithError(w, apiErr)
		return
	}
	log.Printf("Error serving telemetry query: %v", err)
	utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeInternalServerError,
		"query execution failed", nil, http.StatusInternalServerError))
}
