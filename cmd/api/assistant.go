package main

import (
	"errors"
	"net/http"

	"campusbook/internal/assistant"
)

type ChatPayload struct {
	Message string              `json:"message" validate:"required,max=2000"`
	History []assistant.Message `json:"history" validate:"max=100"`
}

// chatHandler godoc
//
//	@Summary		Chat with the booking assistant
//	@Description	Booking requests from signed-in users are booked automatically; other messages get an informational reply.
//	@Tags			Assistant
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ChatPayload	true	"Message and prior turns"
//	@Success		200		{object}	assistant.Reply
//	@Router			/assistant/chat [post]
func (app *application) chatHandler(w http.ResponseWriter, r *http.Request) {
	var payload ChatPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	req := assistant.Request{Message: payload.Message, History: payload.History}
	if userID, ok := getUserIDFromContext(r); ok {
		req.UserID = &userID
	}

	reply, err := app.assistant.Reply(r.Context(), req)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyMessage) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, reply); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ClassifyPayload struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func (app *application) classifyHandler(w http.ResponseWriter, r *http.Request) {
	var payload ClassifyPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	in, err := app.engine.ClassifyIntent(r.Context(), payload.Message)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, in); err != nil {
		app.internalServerError(w, r, err)
	}
}
