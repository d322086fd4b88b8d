// Package main is the entry point of the application
package main

import (
	"net/http"

	"github.com/rs/cors"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", app.handleHealth)
	mux.HandleFunc("/ws", app.authenticate(app.handleWebSocket))

	c := cors.New(cors.Options{
		AllowedOrigins: app.Config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		AllowedHeaders: []string{"X-Api-Key"},
	})

	return c.Handler(mux)
}
