// Package main is the entry point of the application
package main

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	ActiveGames int    `json:"activeGames"`
	Waiting     bool   `json:"waiting"`
	Connections int    `json:"connections"`
}

// handleHealth handles the GET /health endpoint
func (app *application) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:      "ok",
		Uptime:      time.Since(app.StartTime).Round(time.Second).String(),
		ActiveGames: app.Manager.ActiveGames(),
		Waiting:     app.Manager.HasWaitingPlayer(),
		Connections: app.Hub.Count(),
	})
}
