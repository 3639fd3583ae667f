package main

import (
	"net/http"
)

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}

	if app.dbPing != nil {
		if err := app.dbPing(r.Context()); err != nil {
			app.logger.Errorw("health check: database unreachable", "error", err.Error())
			data["status"] = "degraded"
			writeJSON(w, http.StatusServiceUnavailable, data)
			return
		}
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
